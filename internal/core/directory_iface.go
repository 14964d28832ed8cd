package core

import (
	"context"
	"errors"

	"github.com/voxline/voxline/internal/domain"
)

var (
	// ErrDirectoryUnavailable means the lookup protocol itself failed.
	ErrDirectoryUnavailable = errors.New("directory unavailable")
	// ErrNoMatch means the directory answered but resolved nothing usable.
	ErrNoMatch = errors.New("no directory match")
)

// DirectoryRecord is one candidate resolution for a dialed number.
type DirectoryRecord struct {
	UserID    domain.UserID `json:"user_id"`
	Protocol  string        `json:"protocol"`
	Native    bool          `json:"native"`
	Succeeded bool          `json:"succeeded"`
}

// DirectoryResolver resolves a free-form dialed number to candidate users.
// Records come back in directory order; callers apply their own selection
// policy on top.
type DirectoryResolver interface {
	Lookup(ctx context.Context, number string) ([]DirectoryRecord, error)
}
