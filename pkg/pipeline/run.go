package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-running loop.
type Runner interface {
	Run(ctx context.Context) error
}

// Run runs all runners until ctx is cancelled or one of them fails, in
// which case the rest are stopped and its error returned.
func Run(ctx context.Context, runners ...Runner) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		if r == nil {
			continue
		}
		g.Go(func() error { return r.Run(gctx) })
	}
	return g.Wait()
}
