package pipeline_test

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/db"
	"github.com/kcidb/kcidb-go/pkg/monitor"
	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/pipeline"
	"github.com/kcidb/kcidb-go/pkg/spool"
)

func TestNewIngester_Errors(t *testing.T) {
	t.Parallel()

	_, _, sub := queue(t)
	_, err := pipeline.NewIngester(nil, new(MockLoader), nil, nil)
	assert.ErrorIs(t, err, pipeline.ErrSubscriberNil)
	_, err = pipeline.NewIngester(sub, nil, nil, nil)
	assert.ErrorIs(t, err, pipeline.ErrLoaderNil)
}

func TestIngester_OverloadLeavesReportUnacked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, pub, sub := queue(t, mq.WithMemoryAckDeadline(30*time.Millisecond))
	require.NoError(t, pub.Publish(ctx, parse(t, ltpFailure)))

	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(db.ErrOverload).Once()
	loader.On("Load", mock.Anything, mock.Anything).Return(nil).Once()

	ing, err := pipeline.NewIngester(sub, loader, nil, nil)
	require.NoError(t, err)

	err = ing.Step(ctx)
	assert.ErrorIs(t, err, db.ErrOverload)

	// redelivered once the ack deadline passes
	require.NoError(t, ing.Step(ctx))
	loader.AssertNumberOfCalls(t, "Load", 2)

	pullCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, _, err = sub.Pull(pullCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "acknowledged report is gone")
}

func TestIngester_DropsUndecodableReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	broker, _, sub := queue(t, mq.WithMemoryAckDeadline(30*time.Millisecond))
	require.NoError(t, broker.Publish(ctx, "reports", []byte(`{"version": {"major": 4, "minor": 1}, "bogus": []}`)))

	loader := new(MockLoader)
	ing, err := pipeline.NewIngester(sub, loader, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ing.Step(ctx))
	loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)

	pullCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, _, err = sub.Pull(pullCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIngester_EndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, pub, sub := queue(t)

	client, err := db.NewClient(db.NewMemoryDriver())
	require.NoError(t, err)
	require.NoError(t, client.Init(ctx))
	mon, err := monitor.New(client, monitor.DefaultSubscriptions())
	require.NoError(t, err)
	store := spool.NewMemoryStore()
	sp, err := spool.NewClient(store)
	require.NoError(t, err)

	ing, err := pipeline.NewIngester(sub, client, mon, sp)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, parse(t, ltpFailure)))
	require.NoError(t, ing.Step(ctx))

	ids := collect(t, sp.Unpicked(ctx, time.Time{}))
	require.Len(t, ids, 1)
	id := ids[0]

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *mail.Message) bool {
		return msg.Header.Get("X-KCIDB-Notification-ID") == id &&
			msg.Header.Get("Subject") == "LTP failed for mainline"
	})).Return(nil).Once()

	del, err := pipeline.NewDeliverer(sp, sender)
	require.NoError(t, err)
	n, err := del.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	sender.AssertExpectations(t)

	doc, ok := store.Get(id)
	require.True(t, ok)
	assert.NotNil(t, doc.AckedAt)

	n, err = del.Step(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the same report again does not produce a second notification
	require.NoError(t, pub.Publish(ctx, parse(t, ltpFailure)))
	require.NoError(t, ing.Step(ctx))
	assert.Empty(t, collect(t, sp.Unpicked(ctx, time.Time{})))
}

func TestIngester_RunStops(t *testing.T) {
	t.Parallel()

	t.Run("on cancel", func(t *testing.T) {
		t.Parallel()
		_, _, sub := queue(t)
		ing, err := pipeline.NewIngester(sub, new(MockLoader), nil, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.NoError(t, ing.Run(ctx))
	})

	t.Run("on missing subscription", func(t *testing.T) {
		t.Parallel()
		broker := mq.NewMemoryBroker()
		require.NoError(t, broker.CreateTopic(context.Background(), "reports"))
		sub, err := mq.NewSubscriber(broker, "reports", "missing")
		require.NoError(t, err)
		ing, err := pipeline.NewIngester(sub, new(MockLoader), nil, nil)
		require.NoError(t, err)

		err = ing.Run(context.Background())
		assert.ErrorIs(t, err, mq.ErrSubscriptionNotFound)
	})
}
