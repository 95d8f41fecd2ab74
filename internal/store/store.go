// Package store provides the batch storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/vela/internal/model"
)

// ErrNotFound is returned when no live batch matches.
var ErrNotFound = errors.New("batch not found")

// PutParams holds parameters for storing a batch.
type PutParams struct {
	Name string
	Text string
	Tags []string
}

// GetParams holds parameters for retrieving a batch.
type GetParams struct {
	Name    string
	History bool
	Version int // 0 means latest
}

// ListParams holds parameters for listing batches.
type ListParams struct {
	Tags  []string
	Limit int
}

// RmParams holds parameters for deleting a batch.
type RmParams struct {
	Name        string
	AllVersions bool
	Hard        bool
}

// Store defines the batch storage interface.
type Store interface {
	// Put stores a new version of a batch. Returns the created batch.
	Put(ctx context.Context, p PutParams) (*model.Batch, error)

	// Get retrieves a batch by name with its quotes.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]model.Batch, error)

	// List lists the latest version of each batch.
	List(ctx context.Context, p ListParams) ([]model.Batch, error)

	// Rm soft-deletes (or hard-deletes) a batch.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
