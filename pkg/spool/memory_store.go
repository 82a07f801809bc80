package spool

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store in memory. Transactions are serialized by a
// single mutex; writes made through a Tx become visible only when fn
// returns nil.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

type memoryTx struct {
	id      string
	current Document
	found   bool
	dirty   bool
}

func (tx *memoryTx) Get(ctx context.Context) (Document, bool, error) {
	return tx.current, tx.found, nil
}

func (tx *memoryTx) Create(ctx context.Context, doc Document) error {
	if tx.found {
		return ErrExists
	}
	doc.ID = tx.id
	tx.current, tx.found, tx.dirty = doc, true, true
	return nil
}

func (tx *memoryTx) Update(ctx context.Context, p Patch) error {
	if !tx.found {
		return ErrNotFound
	}
	p.apply(&tx.current)
	tx.dirty = true
	return nil
}

// RunTx implements Store
func (s *MemoryStore) RunTx(ctx context.Context, id string, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, found := s.docs[id]
	tx := &memoryTx{id: id, current: doc, found: found}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.dirty {
		s.docs[id] = tx.current
	}
	return nil
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	p.apply(&doc)
	s.docs[id] = doc
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)
	return nil
}

// DeleteCreatedUntil implements Store
func (s *MemoryStore) DeleteCreatedUntil(ctx context.Context, until time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, doc := range s.docs {
		if !doc.CreatedAt.After(until) {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

// ScanPickedBefore implements Store. Pages are ordered by ID and resume
// after the last ID seen, like a keyset-paginated query.
func (s *MemoryStore) ScanPickedBefore(ctx context.Context, at time.Time, pageSize int) iter.Seq2[string, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(string, error) bool) {
		after := ""
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			page := s.page(at, after, pageSize)
			for _, id := range page {
				if !yield(id, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			after = page[len(page)-1]
		}
	}
}

func (s *MemoryStore) page(at time.Time, after string, size int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, size)
	for id, doc := range s.docs {
		if id > after && doc.PickedUntil.Before(at) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	if len(ids) > size {
		ids = ids[:size]
	}
	return ids
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(id string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	return doc, ok
}
