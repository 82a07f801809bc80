package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/monitor"
	"github.com/kcidb/kcidb-go/pkg/pipeline"
	"github.com/kcidb/kcidb-go/pkg/spool"
)

func note(objectID string) monitor.Notification {
	return monitor.Notification{
		ObjectType:   "checkout",
		ObjectID:     objectID,
		Subscription: "test",
		Message:      monitor.Message{To: []string{"a@example.com"}, Summary: "Hello "},
	}
}

func TestNewDeliverer_Errors(t *testing.T) {
	t.Parallel()

	sp, err := spool.NewClient(spool.NewMemoryStore())
	require.NoError(t, err)
	_, err = pipeline.NewDeliverer(nil, new(MockSender))
	assert.ErrorIs(t, err, pipeline.ErrSpoolNil)
	_, err = pipeline.NewDeliverer(sp, nil)
	assert.ErrorIs(t, err, pipeline.ErrSenderNil)
}

func TestDeliverer_RetriesAfterLease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()
	store := spool.NewMemoryStore()
	sp, err := spool.NewClient(store, spool.WithClock(clk.Now), spool.WithPickTimeout(time.Minute))
	require.NoError(t, err)

	n := note("ci:c1")
	_, err = sp.Put(ctx, n, time.Time{})
	require.NoError(t, err)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	del, err := pipeline.NewDeliverer(sp, sender)
	require.NoError(t, err)

	sent, err := del.Step(ctx)
	require.NoError(t, err, "send failures are not pass failures")
	assert.Zero(t, sent)

	doc, ok := store.Get(n.ID())
	require.True(t, ok)
	assert.Nil(t, doc.AckedAt)
	assert.Empty(t, collect(t, sp.Unpicked(ctx, time.Time{})), "leased until the pick timeout")

	clk.Advance(2 * time.Minute)
	sent, err = del.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestDeliverer_ManyWorkers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sp, err := spool.NewClient(spool.NewMemoryStore())
	require.NoError(t, err)

	for i := range 25 {
		_, err := sp.Put(ctx, note(fmt.Sprintf("ci:c%d", i)), time.Time{})
		require.NoError(t, err)
	}

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	del, err := pipeline.NewDeliverer(sp, sender, pipeline.WithWorkers(3))
	require.NoError(t, err)
	sent, err := del.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, sent)
	sender.AssertNumberOfCalls(t, "Send", 25)
	assert.Empty(t, collect(t, sp.Unpicked(ctx, time.Time{})))
}

type failingAckOutbox struct {
	*spool.Client
	err error
}

func (o failingAckOutbox) Ack(context.Context, string, time.Time) error {
	return o.err
}

func TestDeliverer_StepReportsWorkerFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sp, err := spool.NewClient(spool.NewMemoryStore(), spool.WithPageSize(1))
	require.NoError(t, err)

	for i := range 20 {
		_, err := sp.Put(ctx, note(fmt.Sprintf("ci:c%d", i)), time.Time{})
		require.NoError(t, err)
	}

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	errAck := errors.New("spool unavailable")
	del, err := pipeline.NewDeliverer(failingAckOutbox{Client: sp, err: errAck}, sender, pipeline.WithWorkers(1))
	require.NoError(t, err)

	sent, err := del.Step(ctx)
	require.ErrorIs(t, err, errAck)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Zero(t, sent)
}

func TestDeliverer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	sp, err := spool.NewClient(spool.NewMemoryStore())
	require.NoError(t, err)
	del, err := pipeline.NewDeliverer(sp, new(MockSender), pipeline.WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, del.Run(ctx))
}
