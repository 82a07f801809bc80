package spool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/spool"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	runStoreSuite(t, func(t *testing.T) spool.Store {
		return spool.NewMemoryStore()
	})
}

func TestMemoryStore_RollbackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := spool.NewMemoryStore()
	boom := errors.New("boom")

	err := store.RunTx(ctx, "n1", func(ctx context.Context, tx spool.Tx) error {
		require.NoError(t, tx.Create(ctx, spool.Document{CreatedAt: base, Message: "x"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, found := store.Get("n1")
	assert.False(t, found)
}

func TestMemoryStore_CreateTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := spool.NewMemoryStore()

	create := func(ctx context.Context, tx spool.Tx) error {
		return tx.Create(ctx, spool.Document{CreatedAt: base, Message: "x"})
	}
	require.NoError(t, store.RunTx(ctx, "n1", create))
	assert.ErrorIs(t, store.RunTx(ctx, "n1", create), spool.ErrExists)
}

func TestIsValidID(t *testing.T) {
	t.Parallel()

	long := make([]byte, 1501)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"ltp:0123abcd", true},
		{"x", true},
		{"...", true},
		{"__", true},
		{"_a_", true},
		{"__init", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{"__x__", false},
		{"____", false},
		{"\xc3\x28", false},
		{string(long[:1500]), true},
		{string(long), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, spool.IsValidID(tt.id), "id %q", tt.id)
	}
}

func TestClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nil store", func(t *testing.T) {
		_, err := spool.NewClient(nil)
		assert.ErrorIs(t, err, spool.ErrStoreNil)
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := spool.NewClient(spool.NewMemoryStore())
		require.NoError(t, err)
		assert.Equal(t, spool.DefaultPickTimeout, client.PickTimeout())

		client, err = spool.NewClient(spool.NewMemoryStore(),
			spool.WithConfig(spool.Config{PickTimeout: time.Minute, PageSize: 10}))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, client.PickTimeout())
	})

	t.Run("zero times use the clock", func(t *testing.T) {
		now := base
		store := spool.NewMemoryStore()
		client, err := spool.NewClient(store,
			spool.WithClock(func() time.Time { return now }),
			spool.WithPickTimeout(time.Minute))
		require.NoError(t, err)

		_, err = client.Put(ctx, note{id: "n1"}, time.Time{})
		require.NoError(t, err)
		doc, _ := store.Get("n1")
		assert.True(t, doc.CreatedAt.Equal(base))

		_, ok, err := client.Pick(ctx, "n1", time.Time{}, 0)
		require.NoError(t, err)
		require.True(t, ok)
		doc, _ = store.Get("n1")
		assert.True(t, doc.PickedUntil.Equal(base.Add(time.Minute)))

		now = base.Add(time.Minute)
		_, ok, err = client.Pick(ctx, "n1", time.Time{}, 0)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stored garbage is not picked", func(t *testing.T) {
		store := spool.NewMemoryStore()
		require.NoError(t, store.RunTx(ctx, "n1", func(ctx context.Context, tx spool.Tx) error {
			return tx.Create(ctx, spool.Document{CreatedAt: base, Message: "not a message"})
		}))
		client, err := spool.NewClient(store)
		require.NoError(t, err)

		_, ok, err := client.Pick(ctx, "n1", base, 0)
		assert.ErrorIs(t, err, spool.ErrInvalidMessage)
		assert.False(t, ok)
		doc, _ := store.Get("n1")
		assert.True(t, doc.PickedUntil.Equal(spool.NeverPicked))
	})
}
