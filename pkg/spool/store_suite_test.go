package spool_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/spool"
)

type note struct {
	id      string
	subject string
	err     error
}

func (n note) ID() string { return n.id }

func (n note) Render() (string, error) {
	if n.err != nil {
		return "", n.err
	}
	return "To: ltp@lists.linux.it\r\nSubject: " + n.subject + "\r\n\r\nbody of " + n.id + "\r\n", nil
}

// base is millisecond-aligned so every store keeps it exactly.
var base = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// runStoreSuite checks the spool behaviour on top of a store. newStore must
// return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) spool.Store) {
	newClient := func(t *testing.T, opts ...spool.Option) (*spool.Client, spool.Store) {
		store := newStore(t)
		client, err := spool.NewClient(store, append([]spool.Option{spool.WithPageSize(3)}, opts...)...)
		require.NoError(t, err)
		return client, store
	}
	ctx := context.Background()

	t.Run("put is idempotent", func(t *testing.T) {
		client, _ := newClient(t)

		ok, err := client.Put(ctx, note{id: "n1", subject: "first"}, base)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = client.Put(ctx, note{id: "n1", subject: "second"}, base.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		msg, ok, err := client.Pick(ctx, "n1", base, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "first", msg.Header.Get("Subject"))
		body, err := io.ReadAll(msg.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "body of n1")
	})

	t.Run("put rejects invalid IDs", func(t *testing.T) {
		client, _ := newClient(t)
		for _, id := range []string{"", ".", "..", "a/b", "__reserved__", "\xff"} {
			_, err := client.Put(ctx, note{id: id}, base)
			assert.ErrorIs(t, err, spool.ErrInvalidID, "id %q", id)
		}
	})

	t.Run("render failure stores nothing", func(t *testing.T) {
		client, _ := newClient(t)
		_, err := client.Put(ctx, note{id: "broken", err: errors.New("no template")}, base)
		assert.ErrorIs(t, err, spool.ErrRender)

		_, ok, err := client.Pick(ctx, "broken", base, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("pick is exclusive until the lease ends", func(t *testing.T) {
		client, _ := newClient(t)
		_, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)

		_, ok, err := client.Pick(ctx, "n1", base, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = client.Pick(ctx, "n1", base.Add(30*time.Second), time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "leased")

		_, ok, err = client.Pick(ctx, "n1", base.Add(time.Minute), time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "lease ended")
	})

	t.Run("pick of a missing notification", func(t *testing.T) {
		client, _ := newClient(t)
		msg, ok, err := client.Pick(ctx, "missing", base, 0)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, msg)
	})

	t.Run("ack is sticky", func(t *testing.T) {
		client, _ := newClient(t)
		_, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)
		_, ok, err := client.Pick(ctx, "n1", base, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, client.Ack(ctx, "n1", base.Add(time.Second)))

		_, ok, err = client.Pick(ctx, "n1", base.AddDate(100, 0, 0), time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, collect(t, client.Unpicked(ctx, base.AddDate(100, 0, 0))))

		assert.ErrorIs(t, client.Ack(ctx, "missing", base), spool.ErrNotFound)
	})

	t.Run("concurrent picks", func(t *testing.T) {
		client, _ := newClient(t)
		_, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)

		var (
			wg      sync.WaitGroup
			winners atomic.Int32
		)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := client.Pick(ctx, "n1", base, time.Minute)
				assert.NoError(t, err)
				if ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})

	t.Run("unpicked lists exactly the pickable notifications", func(t *testing.T) {
		client, _ := newClient(t)
		var want []string
		for i := range 8 {
			id := fmt.Sprintf("n%02d", i)
			_, err := client.Put(ctx, note{id: id}, base)
			require.NoError(t, err)
			want = append(want, id)
		}

		_, ok, err := client.Pick(ctx, "n03", base, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = client.Pick(ctx, "n05", base, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, client.Ack(ctx, "n07", base))

		at := base.Add(30 * time.Minute)
		expected := []string{"n00", "n01", "n02", "n04", "n05", "n06"}
		unpicked := client.Unpicked(ctx, at)
		assert.ElementsMatch(t, expected, collect(t, unpicked))
		assert.ElementsMatch(t, expected, collect(t, unpicked), "restartable")

		// lease boundary: picked_until == at is neither listed nor leased
		assert.NotContains(t, collect(t, client.Unpicked(ctx, base.Add(time.Minute))), "n05")

		var first []string
		for id, err := range client.Unpicked(ctx, at) {
			require.NoError(t, err)
			first = append(first, id)
			if len(first) == 2 {
				break
			}
		}
		assert.Len(t, first, 2)
	})

	t.Run("wipe removes by creation time inclusively", func(t *testing.T) {
		client, _ := newClient(t)
		for i, id := range []string{"old", "edge", "new"} {
			_, err := client.Put(ctx, note{id: id}, base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, err)
		}

		n, err := client.Wipe(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, []string{"new"}, collect(t, client.Unpicked(ctx, base.AddDate(0, 0, 1))))
	})

	t.Run("wipe ignores pick and ack state", func(t *testing.T) {
		client, store := newClient(t)
		for _, id := range []string{"old-leased", "old-acked", "old-fresh"} {
			_, err := client.Put(ctx, note{id: id}, base)
			require.NoError(t, err)
		}
		for _, id := range []string{"new-leased", "new-fresh"} {
			_, err := client.Put(ctx, note{id: id}, base.Add(2*time.Hour))
			require.NoError(t, err)
		}

		for _, id := range []string{"old-leased", "new-leased"} {
			_, ok, err := client.Pick(ctx, id, base.Add(2*time.Hour), 24*time.Hour)
			require.NoError(t, err)
			require.True(t, ok)
		}
		_, ok, err := client.Pick(ctx, "old-acked", base, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, client.Ack(ctx, "old-acked", base.Add(time.Second)))

		n, err := client.Wipe(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		present := map[string]bool{
			"old-leased": false,
			"old-acked":  false,
			"old-fresh":  false,
			"new-leased": true,
			"new-fresh":  true,
		}
		for id, want := range present {
			require.NoError(t, store.RunTx(ctx, id, func(ctx context.Context, tx spool.Tx) error {
				_, found, err := tx.Get(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, found, "id %q", id)
				return nil
			}))
		}
	})

	t.Run("delete", func(t *testing.T) {
		client, _ := newClient(t)
		_, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)
		_, _, err = client.Pick(ctx, "n1", base, time.Hour)
		require.NoError(t, err)

		require.NoError(t, client.Delete(ctx, "n1"))
		require.NoError(t, client.Delete(ctx, "n1"))

		ok, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)
		assert.True(t, ok, "deleted notifications can be spooled again")
	})

	t.Run("document state", func(t *testing.T) {
		client, store := newClient(t)
		_, err := client.Put(ctx, note{id: "n1"}, base)
		require.NoError(t, err)

		require.NoError(t, store.RunTx(ctx, "n1", func(ctx context.Context, tx spool.Tx) error {
			doc, found, err := tx.Get(ctx)
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, doc.CreatedAt.Equal(base))
			assert.True(t, doc.PickedUntil.Equal(spool.NeverPicked))
			assert.Nil(t, doc.PickedAt)
			assert.Nil(t, doc.AckedAt)
			return nil
		}))

		_, _, err = client.Pick(ctx, "n1", base, time.Minute)
		require.NoError(t, err)
		require.NoError(t, client.Ack(ctx, "n1", base.Add(time.Second)))

		require.NoError(t, store.RunTx(ctx, "n1", func(ctx context.Context, tx spool.Tx) error {
			doc, _, err := tx.Get(ctx)
			require.NoError(t, err)
			require.NotNil(t, doc.PickedAt)
			assert.True(t, doc.PickedAt.Equal(base))
			require.NotNil(t, doc.AckedAt)
			assert.True(t, doc.AckedAt.Equal(base.Add(time.Second)))
			assert.True(t, doc.PickedUntil.After(base.AddDate(7000, 0, 0)))
			return nil
		}))
	})
}

func collect(t *testing.T, seq func(func(string, error) bool)) []string {
	t.Helper()
	ids := []string{}
	for id, err := range seq {
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}
