// Package store provides the partitioned key-value table abstraction the
// services persist through. Every record is addressed by (partition key,
// row key) and carries an opaque ETag used for optimistic concurrency.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by point lookups and token-guarded writes
	// when no record matches the (partition, row) address.
	ErrNotFound = errors.New("store: entity not found")

	// ErrConflict is returned when a write's concurrency token is stale or
	// an insert collides with an existing row. Callers may retry after
	// re-reading; see RetryConflict.
	ErrConflict = errors.New("store: concurrency conflict")
)

// Entity is one row of a table. Properties hold the column values as
// strings; the services own the encoding of their fields.
type Entity struct {
	PartitionKey string
	RowKey       string
	ETag         string
	Properties   map[string]string
}

// Get returns the named property or "" when absent.
func (e *Entity) Get(key string) string {
	if e.Properties == nil {
		return ""
	}
	return e.Properties[key]
}

func (e *Entity) Set(key, value string) {
	if e.Properties == nil {
		e.Properties = map[string]string{}
	}
	e.Properties[key] = value
}

// Query describes a scan. PartitionKey, when set, restricts the scan to one
// partition; Filter is evaluated against every remaining row. Limit caps the
// number of rows returned (0 means unbounded). Filters beyond the partition
// run row-by-row, which is the same scan-heavy trade-off the campaign and
// assistance listings accept at small scale.
type Query struct {
	PartitionKey string
	Filter       func(*Entity) bool
	Limit        int
}

// Table is one logical table of the store.
type Table interface {
	// Get returns the entity at (partitionKey, rowKey), or ErrNotFound.
	Get(ctx context.Context, partitionKey, rowKey string) (*Entity, error)

	// Insert writes a new entity, failing with ErrConflict if the address
	// is already occupied. The entity's ETag is populated on return.
	Insert(ctx context.Context, e *Entity) error

	// Update replaces the entity's properties if etag still matches the
	// stored row. A missing row yields ErrNotFound, a stale token
	// ErrConflict. The entity's ETag is rotated on success.
	Update(ctx context.Context, e *Entity, etag string) error

	// Upsert writes the entity regardless of prior state (last writer wins).
	Upsert(ctx context.Context, e *Entity) error

	// Delete removes the entity, or returns ErrNotFound.
	Delete(ctx context.Context, partitionKey, rowKey string) error

	// Query scans the table per q.
	Query(ctx context.Context, q Query) ([]*Entity, error)
}
