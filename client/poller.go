package client

import (
	"context"
	"time"

	"canteen_manager/constants"
	"canteen_manager/eta"
	"canteen_manager/logger"
	"canteen_manager/model"
)

// Snapshot is what one poll tick saw.
type Snapshot struct {
	At         time.Time
	NowServing string
	Orders     []model.OrderView
	// NewlyReady holds orders that turned Ready since the previous tick.
	NewlyReady []model.Order
}

type Poller struct {
	Client   *Client
	Admin    bool
	Interval time.Duration
	// MaxBackoff caps the wait after repeated failures.
	MaxBackoff time.Duration
	// Paused skips a tick when it returns true, like a hidden browser tab.
	Paused func() bool
	Now    func() time.Time

	lastStatus map[uint]string
	failures   int
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Wait is the delay before the next tick: the interval, doubled per
// consecutive failure up to MaxBackoff.
func (p *Poller) Wait() time.Duration {
	wait := p.Interval
	if wait <= 0 {
		wait = 15 * time.Second
	}
	limit := p.MaxBackoff
	if limit < wait {
		limit = wait
	}
	for i := 0; i < p.failures && wait < limit; i++ {
		wait *= 2
	}
	if wait > limit {
		wait = limit
	}
	return wait
}

// Tick polls once. Orders are re-estimated against the local clock.
func (p *Poller) Tick(ctx context.Context) (Snapshot, error) {
	serving, err := p.Client.NowServing(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var views []model.OrderView
	if p.Admin {
		views, err = p.Client.AdminOrders(ctx, "")
	} else {
		views, err = p.Client.MyOrders(ctx)
	}
	if err != nil {
		return Snapshot{}, err
	}

	now := p.now()
	snap := Snapshot{At: now, NowServing: serving, Orders: Reestimate(views, now, p.Admin)}

	seen := make(map[uint]string, len(views))
	for _, v := range views {
		seen[v.ID] = v.Status
		if v.Status != constants.ORDER_READY {
			continue
		}
		if prev, ok := p.lastStatus[v.ID]; ok && prev != constants.ORDER_READY {
			snap.NewlyReady = append(snap.NewlyReady, v.Order)
		}
	}
	p.lastStatus = seen
	return snap, nil
}

// Reestimate refreshes the ETA of each view for now. With the full ledger the
// queue is rebuilt locally; otherwise the server's predicted time is kept.
func Reestimate(views []model.OrderView, now time.Time, fullLedger bool) []model.OrderView {
	out := make([]model.OrderView, len(views))
	if fullLedger {
		orders := make([]model.Order, len(views))
		for i, v := range views {
			orders[i] = v.Order
		}
		copy(out, eta.Annotate(orders, orders, now))
		return out
	}

	for i, v := range views {
		v.ETA.Urgency = eta.Urgency(v.Order, now)
		v.ETA.RemainingMinutes = 0
		if v.Status == constants.ORDER_PREPARING {
			if left := v.ETA.PredictedReadyAt.Sub(now); left > 0 {
				v.ETA.RemainingMinutes = int((left + time.Minute - 1) / time.Minute)
			}
		}
		out[i] = v
	}
	return out
}

// Run polls until ctx ends. Failures are logged and swallowed so one bad tick
// never stops the loop.
func (p *Poller) Run(ctx context.Context, onSnapshot func(Snapshot)) {
	log := logger.WithModule("poller")
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if p.Paused == nil || !p.Paused() {
			snap, err := p.Tick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.failures++
				log.WithError(err).WithField("failures", p.failures).Warn("poll failed")
			} else {
				p.failures = 0
				if onSnapshot != nil {
					onSnapshot(snap)
				}
			}
		}
		timer.Reset(p.Wait())
	}
}
