// Package store keeps the results of pipeline runs submitted to the HTTP API.
//
// Two implementations are provided:
//   - [MemoryStore]: process-local, used in tests and when no database is configured
//   - [MongoStore]: MongoDB-backed, shared between server replicas
//
// Runs are identified by random UUIDs and are immutable once saved.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
)

// Run is the stored outcome of one fetch-and-simplify request.
type Run struct {
	ID          uuid.UUID       `json:"id"`
	Bounds      geo.Bounds      `json:"bbox"`
	CreatedAt   time.Time       `json:"created_at"`
	GraphHash   string          `json:"graph_hash"`
	Component   string          `json:"component"`
	Root        string          `json:"root,omitempty"`
	Parallel    string          `json:"parallel"`
	MaxDistance float64         `json:"max_distance"`
	Summary     Summary         `json:"summary"`
	Graph       json.RawMessage `json:"graph"`
}

// Summary holds node and edge counts around each stage.
type Summary struct {
	FetchedNodes   int `json:"fetched_nodes" bson:"fetched_nodes"`
	FetchedEdges   int `json:"fetched_edges" bson:"fetched_edges"`
	KeptNodes      int `json:"kept_nodes" bson:"kept_nodes"`
	KeptEdges      int `json:"kept_edges" bson:"kept_edges"`
	FinalNodes     int `json:"final_nodes" bson:"final_nodes"`
	FinalEdges     int `json:"final_edges" bson:"final_edges"`
	Collapsed      int `json:"collapsed" bson:"collapsed"`
	Passes         int `json:"passes" bson:"passes"`
	MergedParallel int `json:"merged_parallel" bson:"merged_parallel"`
	SkippedLoops   int `json:"skipped_loops" bson:"skipped_loops"`
}

// NewRun returns a Run with a fresh ID and the current time.
func NewRun(b geo.Bounds) *Run {
	return &Run{
		ID:        uuid.New(),
		Bounds:    b,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists runs.
type Store interface {
	// Save stores r. Saving an ID twice is an error.
	Save(ctx context.Context, r *Run) error

	// Get returns the run with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id uuid.UUID) (*Run, error)

	// List returns up to limit runs, newest first. The graphs are omitted.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases resources.
	Close() error
}

// ParseID parses a run ID from a URL path segment.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id %q", s)
	}
	return id, nil
}

func notFound(id uuid.UUID) error {
	return errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

func duplicate(id uuid.UUID) error {
	return errors.New(errors.ErrCodeInvalidInput, "run %s already exists", id)
}
