// Package eta estimates when an order will be ready, from a snapshot of the
// ledger and a clock. The kitchen is modelled as one FIFO server: each
// Preparing ASAP order starts when the previous one finishes, or when it was
// placed if the kitchen was idle. Results depend on now and on the Preparing
// set, so they are recomputed on every call.
package eta

import (
	"math"
	"sort"
	"time"

	"canteen_manager/constants"
	"canteen_manager/model"
)

const (
	UrgencyNormal  = "normal"
	UrgencyWarning = "warning"
	UrgencyOverdue = "overdue"
	UrgencyReady   = "ready"
	UrgencyDone    = "done"

	OverdueGrace = 5 * time.Minute
)

func prep(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// queued reports whether o adds load to the kitchen queue. Scheduled pickups
// are cooked for their slot and do not delay ASAP orders.
func queued(o model.Order) bool {
	return o.Status == constants.ORDER_PREPARING &&
		(o.PickupTime == "" || o.PickupTime == constants.PICKUP_ASAP)
}

// ahead returns the queued orders placed strictly before o, oldest first.
func ahead(o model.Order, orders []model.Order) []model.Order {
	var out []model.Order
	for _, other := range orders {
		if other.ID == o.ID && o.ID != 0 {
			continue
		}
		if queued(other) && other.CreatedAt.Before(o.CreatedAt) {
			out = append(out, other)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// EarlierQueueLoad is the summed prep minutes of queued orders placed before o.
func EarlierQueueLoad(o model.Order, orders []model.Order) int {
	total := 0
	for _, other := range ahead(o, orders) {
		total += other.PrepTimeTotal
	}
	return total
}

func QueuePosition(o model.Order, orders []model.Order) int {
	if o.Status != constants.ORDER_PREPARING {
		return 0
	}
	return len(ahead(o, orders)) + 1
}

// PredictedReadyAt is when o should come off the pass. Finished orders report
// when they actually became ready.
func PredictedReadyAt(o model.Order, orders []model.Order) time.Time {
	if o.Status != constants.ORDER_PREPARING {
		if o.ReadyAt != nil {
			return *o.ReadyAt
		}
		return o.CreatedAt.Add(prep(o.PrepTimeTotal))
	}

	var finish time.Time
	for _, other := range ahead(o, orders) {
		if other.CreatedAt.After(finish) {
			finish = other.CreatedAt
		}
		finish = finish.Add(prep(other.PrepTimeTotal))
	}
	if o.CreatedAt.After(finish) {
		finish = o.CreatedAt
	}
	return finish.Add(prep(o.PrepTimeTotal))
}

// RemainingMinutes rounds up and never goes below zero.
func RemainingMinutes(o model.Order, orders []model.Order, now time.Time) int {
	if o.Status != constants.ORDER_PREPARING {
		return 0
	}
	left := PredictedReadyAt(o, orders).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Minutes()))
}

// Urgency classifies how late o is running. A prep time of zero is judged
// against the default prep time.
func Urgency(o model.Order, now time.Time) string {
	switch o.Status {
	case constants.ORDER_READY:
		return UrgencyReady
	case constants.ORDER_PICKED_UP:
		return UrgencyDone
	}

	expected := o.PrepTimeTotal
	if expected <= 0 {
		expected = constants.DEFAULT_PREP_MINUTES
	}
	elapsed := now.Sub(o.CreatedAt)
	switch {
	case elapsed > prep(expected)+OverdueGrace:
		return UrgencyOverdue
	case elapsed > prep(expected)/2:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

func Estimate(o model.Order, orders []model.Order, now time.Time) model.OrderETA {
	return model.OrderETA{
		QueuePosition:    QueuePosition(o, orders),
		EarlierQueueLoad: EarlierQueueLoad(o, orders),
		PredictedReadyAt: PredictedReadyAt(o, orders),
		RemainingMinutes: RemainingMinutes(o, orders, now),
		Urgency:          Urgency(o, now),
	}
}

// Annotate attaches an estimate to each of targets, using queue as the
// kitchen's Preparing set.
func Annotate(targets, queue []model.Order, now time.Time) []model.OrderView {
	views := make([]model.OrderView, 0, len(targets))
	for _, o := range targets {
		views = append(views, model.OrderView{Order: o, ETA: Estimate(o, queue, now)})
	}
	return views
}
