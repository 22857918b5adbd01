package poller

import (
	"context"
	"time"
)

// Run polls immediately, then on every tick. Cycles run inline on
// this goroutine, so there is never more than one in flight: ticks
// that fire during a long cycle are dropped by the ticker.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Cycle(ctx)
		}
	}
}
