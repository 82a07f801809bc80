package pipeline_test

import (
	"context"
	"encoding/json"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/report"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, data report.Data) error {
	return m.Called(ctx, data).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func queue(t *testing.T, opts ...mq.MemoryBrokerOption) (*mq.MemoryBroker, *mq.Publisher, *mq.Subscriber) {
	t.Helper()
	ctx := context.Background()
	broker := mq.NewMemoryBroker(opts...)

	pub, err := mq.NewPublisher(broker, "reports")
	require.NoError(t, err)
	require.NoError(t, pub.Init(ctx))

	sub, err := mq.NewSubscriber(broker, "reports", "loader", mq.WithPullTimeout(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, sub.Init(ctx))
	return broker, pub, sub
}

func parse(t *testing.T, s string) report.Data {
	t.Helper()
	var d report.Data
	require.NoError(t, json.Unmarshal([]byte(s), &d))
	return d
}

const ltpFailure = `{
	"version": {"major": 4, "minor": 1},
	"checkouts": [{"id": "ci:c1", "origin": "ci", "tree_name": "mainline"}],
	"builds": [{"id": "ci:b1", "origin": "ci", "checkout_id": "ci:c1"}],
	"tests": [{"id": "ci:t1", "origin": "ci", "build_id": "ci:b1", "path": "ltp.fs", "status": "FAIL"}]
}`

func collect(t *testing.T, seq func(func(string, error) bool)) []string {
	t.Helper()
	var ids []string
	for id, err := range seq {
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}
