// Package directory implements the dial-number lookup protocol against an
// HTTP directory service.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/core"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type lookupRequest struct {
	Number string `json:"number"`
}

type lookupResponse struct {
	Results []core.DirectoryRecord `json:"results"`
}

// Lookup resolves a free-form dialed number. Punctuation is stripped before
// the query. Protocol failures map to core.ErrDirectoryUnavailable, an empty
// answer to core.ErrNoMatch.
func (c *Client) Lookup(ctx context.Context, number string) ([]core.DirectoryRecord, error) {
	normalized := normalizeNumber(number)
	if normalized == "" {
		return nil, core.ErrNoMatch
	}

	body, err := json.Marshal(lookupRequest{Number: normalized})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.ErrNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", core.ErrDirectoryUnavailable, resp.StatusCode)
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}
	if len(out.Results) == 0 {
		return nil, core.ErrNoMatch
	}
	log.Debug().Str("module", "adapters.directory").Str("number", normalized).Int("results", len(out.Results)).Msg("lookup done")
	return out.Results, nil
}

// normalizeNumber keeps digits and a leading plus, dropping the punctuation
// people type into dial pads.
func normalizeNumber(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
