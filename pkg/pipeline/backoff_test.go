package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kcidb/kcidb-go/pkg/pipeline"
)

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	b := pipeline.ExponentialBackoff{InitialInterval: time.Second, MaxInterval: 10 * time.Second}
	assert.Zero(t, b.NextInterval(0))
	assert.Equal(t, time.Second, b.NextInterval(1))
	assert.Equal(t, 2*time.Second, b.NextInterval(2))
	assert.Equal(t, 8*time.Second, b.NextInterval(4))
	assert.Equal(t, 10*time.Second, b.NextInterval(10), "capped")

	jittered := pipeline.ExponentialBackoff{InitialInterval: time.Second, MaxInterval: time.Minute, JitterFactor: 0.5}
	for range 100 {
		d := jittered.NextInterval(3)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 6*time.Second)
	}
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	stopped := make(chan struct{})
	err := pipeline.Run(context.Background(),
		runnerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}),
		runnerFunc(func(context.Context) error { return boom }),
	)
	assert.ErrorIs(t, err, boom)
	select {
	case <-stopped:
	default:
		t.Fatal("sibling runner was not stopped")
	}
}
