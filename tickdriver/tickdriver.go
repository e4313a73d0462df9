// Package tickdriver calls a step function at a fixed cadence until its
// context is cancelled. It generalizes the teacher's Controller.run()
// select-loop-with-timer pattern into a reusable primitive; cmd/elscontrol
// uses it for the real-time GPIO tick (the console and telemetry run their
// own loops).
package tickdriver

import (
	"context"
	"time"
)

// Run calls step once every period until ctx is done. It is the host's
// responsibility to keep step itself non-blocking and short-bounded; Run
// applies no timeout of its own.
func Run(ctx context.Context, period time.Duration, step func()) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			step()
		}
	}
}
