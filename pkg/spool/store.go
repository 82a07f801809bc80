package spool

import (
	"context"
	"iter"
	"time"
)

// Store persists notification documents.
//
// RunTx runs fn atomically against the document with the given ID: reads
// made through the Tx observe a state no concurrent RunTx can change before
// fn's writes are committed. fn may be called more than once if the store
// retries a conflicting transaction. An error from fn aborts the
// transaction and is returned.
type Store interface {
	RunTx(ctx context.Context, id string, fn func(ctx context.Context, tx Tx) error) error
	// Update applies p to an existing document, or returns ErrNotFound.
	Update(ctx context.Context, id string, p Patch) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteCreatedUntil removes documents with CreatedAt <= until and
	// returns how many were removed.
	DeleteCreatedUntil(ctx context.Context, until time.Time) (int64, error)
	// ScanPickedBefore yields IDs of documents with PickedUntil < at,
	// fetching pageSize IDs per round trip. Every range over the sequence
	// starts a new scan.
	ScanPickedBefore(ctx context.Context, at time.Time, pageSize int) iter.Seq2[string, error]
}

// Tx is a transaction over a single document.
type Tx interface {
	// Get returns the document and whether it exists.
	Get(ctx context.Context) (Document, bool, error)
	// Create inserts the document. It returns ErrExists if a document with
	// the same ID is present.
	Create(ctx context.Context, doc Document) error
	// Update applies p to the document read by Get.
	Update(ctx context.Context, p Patch) error
}
