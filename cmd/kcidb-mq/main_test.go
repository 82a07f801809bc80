package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/report"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func memoryApp(broker *mq.MemoryBroker) *app {
	return &app{connect: func(context.Context, *app) (mq.Broker, io.Closer, error) {
		return broker, nopCloser{}, nil
	}}
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(a)
	cmd.SetArgs(append([]string{"--topic", "reports", "--subscription", "loader"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

const reports = `{
	"version": {"major": 3, "minor": 0},
	"revisions": [{"id": "deadbeef", "origin": "ci"}]
}
{"version": {"major": 4, "minor": 1}, "checkouts": [{"id": "ci:c2", "origin": "ci"}]}`

func TestPublishAndPull(t *testing.T) {
	t.Parallel()
	a := memoryApp(mq.NewMemoryBroker())

	_, err := run(t, a, "", "publisher", "init")
	require.NoError(t, err)
	_, err = run(t, a, "", "subscriber", "init")
	require.NoError(t, err)
	_, err = run(t, a, reports, "publisher", "publish")
	require.NoError(t, err)

	var ids []string
	for range 2 {
		out, err := run(t, a, "", "subscriber", "pull", "--timeout", "1s")
		require.NoError(t, err)
		assert.Contains(t, out, "\n    \"checkouts\": [")

		var data report.Data
		require.NoError(t, json.Unmarshal([]byte(out), &data))
		require.NoError(t, report.ValidateLatest(data))
		ids = append(ids, report.ID(data.Objects("checkouts")[0]))
	}
	assert.Equal(t, []string{"deadbeef", "ci:c2"}, ids)

	out, err := run(t, a, "", "subscriber", "pull", "--timeout", "50ms")
	require.NoError(t, err)
	assert.Empty(t, out, "acknowledged reports are not pulled again")
}

func TestPublishRejectsInvalid(t *testing.T) {
	t.Parallel()
	a := memoryApp(mq.NewMemoryBroker())

	_, err := run(t, a, "", "publisher", "init")
	require.NoError(t, err)

	_, err = run(t, a, `{"version": {"major": 4, "minor": 1}, "nope": 1}`, "publisher", "publish")
	assert.ErrorIs(t, err, mq.ErrInvalidPayload)

	_, err = run(t, a, `{"version": `, "publisher", "publish")
	assert.ErrorContains(t, err, "failed to read report 1")
}

func TestCleanup(t *testing.T) {
	t.Parallel()
	broker := mq.NewMemoryBroker()
	a := memoryApp(broker)

	_, err := run(t, a, "", "publisher", "init")
	require.NoError(t, err)
	_, err = run(t, a, "", "subscriber", "init")
	require.NoError(t, err)
	_, err = run(t, a, "", "subscriber", "cleanup")
	require.NoError(t, err)

	_, err = run(t, a, "", "subscriber", "pull", "--timeout", "50ms")
	assert.ErrorIs(t, err, mq.ErrSubscriptionNotFound)

	_, err = run(t, a, "", "publisher", "cleanup")
	require.NoError(t, err)
	_, err = run(t, a, reports, "publisher", "publish")
	assert.ErrorIs(t, err, mq.ErrTopicNotFound)
}
