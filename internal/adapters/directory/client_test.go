package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxline/voxline/internal/core"
)

func TestLookupNormalizesAndDecodes(t *testing.T) {
	var gotNumber string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Number string `json:"number"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotNumber = req.Number
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"user_id": "@u2:example.org", "protocol": "msisdn", "native": true, "succeeded": true},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	records, err := c.Lookup(context.Background(), "+44 (0)18-1811.8181")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if gotNumber != "+4401818118181" {
		t.Fatalf("number not normalized, got %q", gotNumber)
	}
	if len(records) != 1 || records[0].UserID != "@u2:example.org" || !records[0].Native {
		t.Fatalf("bad records %+v", records)
	}
}

func TestLookupNotFoundIsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Lookup(context.Background(), "0123"); !errors.Is(err, core.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestLookupEmptyResultsIsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Lookup(context.Background(), "0123"); !errors.Is(err, core.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestLookupServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Lookup(context.Background(), "0123"); !errors.Is(err, core.ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
}

func TestLookupConnectionErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Lookup(context.Background(), "0123"); !errors.Is(err, core.ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
}

func TestLookupEmptyNumberIsNoMatch(t *testing.T) {
	c := NewClient("http://localhost:0", time.Second)
	if _, err := c.Lookup(context.Background(), "---"); !errors.Is(err, core.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for punctuation-only input, got %v", err)
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"01818118181", "01818118181"},
		{"+44 181 811-8181", "+441818118181"},
		{"(0)18.18", "01818"},
		{"18+18", "1818"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeNumber(tc.in); got != tc.want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
