package db

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/kcidb/kcidb-go/pkg/report"
)

// Throttle is a Driver letting at most a fixed number of loads run at once.
// Loads beyond the limit fail immediately with ErrOverload.
type Throttle struct {
	Driver
	sem *semaphore.Weighted
}

// NewThrottle wraps driver, allowing maxLoads concurrent loads.
func NewThrottle(driver Driver, maxLoads int64) *Throttle {
	return &Throttle{
		Driver: driver,
		sem:    semaphore.NewWeighted(max(maxLoads, 1)),
	}
}

// Load implements Driver
func (t *Throttle) Load(ctx context.Context, data report.Data) error {
	if !t.sem.TryAcquire(1) {
		return ErrOverload
	}
	defer t.sem.Release(1)
	return t.Driver.Load(ctx, data)
}
