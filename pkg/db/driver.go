package db

import (
	"context"
	"iter"
	"time"

	"github.com/kcidb/kcidb-go/pkg/report"
)

// QueryRequest selects objects by ID per collection. Children and Parents
// add the objects directly linked to the matched ones.
type QueryRequest struct {
	IDs      map[string][]string
	Children bool
	Parents  bool
}

// ObjectRequest asks for objects of one type. Nil IDs select every object
// of the type.
type ObjectRequest struct {
	Type string
	IDs  []string
}

// Driver is a report storage backend.
type Driver interface {
	// SchemaVersion returns the report schema version the storage
	// corresponds to, with ok == false if it is uninitialized.
	SchemaVersion(ctx context.Context) (v report.Version, ok bool, err error)
	// Init prepares an uninitialized storage.
	Init(ctx context.Context) error
	// Cleanup removes all data, leaving the storage uninitialized.
	Cleanup(ctx context.Context) error
	// LastModified returns the time of the latest change to the data.
	LastModified(ctx context.Context) (time.Time, error)
	// Dump yields all stored data in reports of at most objectsPerChunk
	// objects each, or a single report if objectsPerChunk is zero.
	Dump(ctx context.Context, objectsPerChunk int) iter.Seq2[report.Data, error]
	// Query yields the objects matching req, chunked like Dump.
	Query(ctx context.Context, req QueryRequest, objectsPerChunk int) iter.Seq2[report.Data, error]
	// ObjectQuery returns the requested objects grouped by type.
	ObjectQuery(ctx context.Context, reqs []ObjectRequest) (map[string][]report.Object, error)
	// Load stores data valid under the latest schema. It returns
	// ErrOverload when the backend cannot accept it right now.
	Load(ctx context.Context, data report.Data) error
}
