// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxDisplayNameLen = 64

var (
	ErrUserIDEmpty        = errors.New("user id empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

// UserID is an opaque federated account handle, e.g. "@alice:example.org".
type UserID string

type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, displayName string) (*User, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrUserIDEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &User{ID: id, DisplayName: displayName}, nil
}
