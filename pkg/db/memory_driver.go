package db

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/kcidb/kcidb-go/pkg/report"
)

// MemoryDriver implements Driver in memory. Loading an object whose ID is
// already stored merges the new fields into the stored object.
type MemoryDriver struct {
	mu          sync.RWMutex
	initialized bool
	modified    time.Time
	// objects maps a collection name to its objects by ID; order keeps
	// IDs in first-load order.
	objects map[string]map[string]report.Object
	order   map[string][]string
	now     func() time.Time
}

// MemoryDriverOption configures a MemoryDriver.
type MemoryDriverOption func(*MemoryDriver)

// WithMemoryClock replaces time.Now for modification times.
func WithMemoryClock(now func() time.Time) MemoryDriverOption {
	return func(d *MemoryDriver) {
		if now != nil {
			d.now = now
		}
	}
}

// NewMemoryDriver creates an uninitialized in-memory driver.
func NewMemoryDriver(opts ...MemoryDriverOption) *MemoryDriver {
	d := &MemoryDriver{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SchemaVersion implements Driver
func (d *MemoryDriver) SchemaVersion(ctx context.Context) (report.Version, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return report.Version{}, false, nil
	}
	return report.Latest, true, nil
}

// Init implements Driver
func (d *MemoryDriver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = true
	d.objects = make(map[string]map[string]report.Object)
	d.order = make(map[string][]string)
	d.modified = d.now()
	return nil
}

// Cleanup implements Driver
func (d *MemoryDriver) Cleanup(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = false
	d.objects = nil
	d.order = nil
	d.modified = time.Time{}
	return nil
}

// LastModified implements Driver
func (d *MemoryDriver) LastModified(ctx context.Context) (time.Time, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return time.Time{}, ErrUninitialized
	}
	return d.modified, nil
}

// Load implements Driver
func (d *MemoryDriver) Load(ctx context.Context, data report.Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return ErrUninitialized
	}
	for _, name := range report.Collections {
		for _, obj := range data.Objects(name) {
			d.merge(name, obj)
		}
	}
	d.modified = d.now()
	return nil
}

func (d *MemoryDriver) merge(name string, obj report.Object) {
	id := report.ID(obj)
	objs, ok := d.objects[name]
	if !ok {
		objs = make(map[string]report.Object)
		d.objects[name] = objs
	}
	stored, ok := objs[id]
	if !ok {
		stored = make(report.Object, len(obj))
		objs[id] = stored
		d.order[name] = append(d.order[name], id)
	}
	for k, v := range report.Data(obj).Clone() {
		stored[k] = v
	}
}

// Dump implements Driver
func (d *MemoryDriver) Dump(ctx context.Context, objectsPerChunk int) iter.Seq2[report.Data, error] {
	return d.chunks(ctx, objectsPerChunk, func() (report.Data, error) {
		data := report.New()
		for _, name := range report.Collections {
			for _, id := range d.order[name] {
				data.Add(name, d.copyOf(name, id))
			}
		}
		return data, nil
	})
}

// Query implements Driver. Children and parents are expanded one link away
// from the requested objects.
func (d *MemoryDriver) Query(ctx context.Context, req QueryRequest, objectsPerChunk int) iter.Seq2[report.Data, error] {
	return d.chunks(ctx, objectsPerChunk, func() (report.Data, error) {
		matched := make(map[string]map[string]bool)
		mark := func(name, id string) {
			if _, ok := d.objects[name][id]; !ok {
				return
			}
			if matched[name] == nil {
				matched[name] = make(map[string]bool)
			}
			matched[name][id] = true
		}
		for name, ids := range req.IDs {
			for _, id := range ids {
				mark(name, id)
			}
		}

		direct := make(map[string][]string, len(matched))
		for name, ids := range matched {
			for id := range ids {
				direct[name] = append(direct[name], id)
			}
		}
		for name, ids := range direct {
			if req.Children {
				for _, rel := range report.ChildRelations(name) {
					for _, childID := range d.order[rel.Child] {
						ref, _ := d.objects[rel.Child][childID][rel.Field].(string)
						if slices.Contains(ids, ref) {
							mark(rel.Child, childID)
						}
					}
				}
			}
			if req.Parents {
				for _, rel := range report.ParentRelations(name) {
					for _, id := range ids {
						if ref, ok := d.objects[name][id][rel.Field].(string); ok {
							mark(rel.Parent, ref)
						}
					}
				}
			}
		}

		data := report.New()
		for _, name := range report.Collections {
			for _, id := range d.order[name] {
				if matched[name][id] {
					data.Add(name, d.copyOf(name, id))
				}
			}
		}
		return data, nil
	})
}

// ObjectQuery implements Driver
func (d *MemoryDriver) ObjectQuery(ctx context.Context, reqs []ObjectRequest) (map[string][]report.Object, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return nil, ErrUninitialized
	}
	result := make(map[string][]report.Object)
	seen := make(map[string]map[string]bool)
	for _, r := range reqs {
		ids := r.IDs
		if ids == nil {
			ids = d.order[r.Type]
		}
		if seen[r.Type] == nil {
			seen[r.Type] = make(map[string]bool)
		}
		for _, id := range ids {
			if _, ok := d.objects[r.Type][id]; !ok || seen[r.Type][id] {
				continue
			}
			seen[r.Type][id] = true
			result[r.Type] = append(result[r.Type], d.copyOf(r.Type, id))
		}
	}
	return result, nil
}

// chunks builds a report under the read lock and yields it split into
// chunks.
func (d *MemoryDriver) chunks(ctx context.Context, n int, build func() (report.Data, error)) iter.Seq2[report.Data, error] {
	return func(yield func(report.Data, error) bool) {
		d.mu.RLock()
		if !d.initialized {
			d.mu.RUnlock()
			yield(nil, ErrUninitialized)
			return
		}
		data, err := build()
		d.mu.RUnlock()
		if err != nil {
			yield(nil, err)
			return
		}

		for _, chunk := range report.Chunks(data, n) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (d *MemoryDriver) copyOf(name, id string) report.Object {
	return report.Object(report.Data(d.objects[name][id]).Clone())
}
