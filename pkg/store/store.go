// Package store persists discovered layouts.
//
// Each search run that the user chooses to save becomes a Record: the
// winning layout in its textual form, its scores, and the corpus it was
// scored against (by content hash). Backends:
//   - file: JSON records in a config directory, for the CLI
//   - mongo: MongoDB collection for shared/server deployments
//
// # Usage
//
//	st, err := store.NewFileStore("") // uses ~/.config/keygen/results/
//	if err != nil {
//	    return err
//	}
//	rec := store.NewRecord(layoutText, corpusHash, "anneal", total, average)
//	if err := st.Save(ctx, rec); err != nil {
//	    return err
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one saved search result.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	CorpusHash string    `json:"corpus_hash" bson:"corpus_hash"`
	Source     string    `json:"source" bson:"source"` // "anneal" or "refine"
	Total      float64   `json:"total" bson:"total"`
	Average    float64   `json:"average" bson:"average"`
	Layout     string    `json:"layout" bson:"layout"` // keyboard.Layout text form
}

// NewRecord builds a record with a fresh UUID and the current time.
func NewRecord(layoutText, corpusHash, source string, total, average float64) *Record {
	return &Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		CorpusHash: corpusHash,
		Source:     source,
		Total:      total,
		Average:    average,
		Layout:     layoutText,
	}
}

// Store is the interface for result storage backends.
type Store interface {
	// Save stores a record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, best (lowest average) first.
	// A non-positive limit returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
