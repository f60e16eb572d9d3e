// Package mockstore backs mock routes with a record store, so that a
// client can create, read, update and delete entities against a mock
// server and observe its own writes.
//
//	srv := mock.New(native)
//	mockstore.Register(srv, "books", mockstore.NewMemoryStore())
//
// registers create, list, read, update, patch and delete routes for the
// "books" collection. MemoryStore keeps records in process; RedisStore
// keeps them in Redis hashes so they survive restarts and can be shared
// between processes.
package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("mockstore: record not found")

// Record is a stored entity. The "id" field holds the record ID.
type Record map[string]any

// Store persists records grouped by collection.
type Store interface {
	// List returns the records of a collection ordered by ID.
	List(ctx context.Context, collection string) ([]Record, error)
	// Get returns a record or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)
	// Put creates or replaces a record.
	Put(ctx context.Context, collection, id string, rec Record) error
	// Delete removes a record or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

// toRecord converts a request payload to a Record.
func toRecord(v any) (Record, error) {
	switch r := v.(type) {
	case nil:
		return Record{}, nil
	case Record:
		return cloneRecord(r), nil
	case map[string]any:
		return cloneRecord(r), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mockstore: encode payload: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("mockstore: payload is not an object: %w", err)
	}
	return rec, nil
}

func cloneRecord(r map[string]any) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
