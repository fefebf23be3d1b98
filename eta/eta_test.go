package eta

import (
	"testing"
	"time"

	"canteen_manager/constants"
	"canteen_manager/model"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func order(id uint, offset time.Duration, prepMinutes int, status string) model.Order {
	return model.Order{
		ID:            id,
		CreatedAt:     t0.Add(offset),
		PrepTimeTotal: prepMinutes,
		Status:        status,
		PickupTime:    constants.PICKUP_ASAP,
	}
}

func TestRemainingMinutesQueuesBehindEarlierOrder(t *testing.T) {
	a := order(1, 0, 10, constants.ORDER_PREPARING)
	b := order(2, time.Minute, 5, constants.ORDER_PREPARING)
	orders := []model.Order{a, b}

	now := t0.Add(time.Minute)
	assert.Equal(t, 14, RemainingMinutes(b, orders, now))
	assert.Equal(t, t0.Add(15*time.Minute), PredictedReadyAt(b, orders))
	assert.Equal(t, 10, EarlierQueueLoad(b, orders))
	assert.Equal(t, 2, QueuePosition(b, orders))

	assert.Equal(t, 9, RemainingMinutes(a, orders, now))
	assert.Equal(t, 1, QueuePosition(a, orders))
}

func TestIdleKitchenStartsAtCreation(t *testing.T) {
	a := order(1, 0, 5, constants.ORDER_PREPARING)
	b := order(2, 30*time.Minute, 10, constants.ORDER_PREPARING)
	orders := []model.Order{b, a}

	assert.Equal(t, t0.Add(40*time.Minute), PredictedReadyAt(b, orders))
	assert.Equal(t, 10, RemainingMinutes(b, orders, t0.Add(30*time.Minute)))
}

func TestRemainingMinutesNeverNegative(t *testing.T) {
	a := order(1, 0, 10, constants.ORDER_PREPARING)
	assert.Equal(t, 0, RemainingMinutes(a, []model.Order{a}, t0.Add(time.Hour)))
}

func TestRemainingMinutesRoundsUp(t *testing.T) {
	a := order(1, 0, 10, constants.ORDER_PREPARING)
	assert.Equal(t, 10, RemainingMinutes(a, []model.Order{a}, t0.Add(30*time.Second)))
}

func TestScheduledAndFinishedOrdersAddNoLoad(t *testing.T) {
	scheduled := order(1, 0, 20, constants.ORDER_PREPARING)
	scheduled.PickupTime = "13:30"
	ready := order(2, 0, 20, constants.ORDER_READY)
	picked := order(3, 0, 20, constants.ORDER_PICKED_UP)
	mine := order(4, time.Minute, 5, constants.ORDER_PREPARING)
	orders := []model.Order{scheduled, ready, picked, mine}

	assert.Equal(t, 0, EarlierQueueLoad(mine, orders))
	assert.Equal(t, 1, QueuePosition(mine, orders))
	assert.Equal(t, 5, RemainingMinutes(mine, orders, t0.Add(time.Minute)))
}

func TestEstimateForReadyOrder(t *testing.T) {
	readyAt := t0.Add(7 * time.Minute)
	o := order(1, 0, 10, constants.ORDER_READY)
	o.ReadyAt = &readyAt

	got := Estimate(o, nil, t0.Add(8*time.Minute))
	assert.Equal(t, 0, got.QueuePosition)
	assert.Equal(t, 0, got.RemainingMinutes)
	assert.Equal(t, readyAt, got.PredictedReadyAt)
	assert.Equal(t, UrgencyReady, got.Urgency)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		prep    int
		elapsed time.Duration
		want    string
	}{
		{"fresh", constants.ORDER_PREPARING, 10, 2 * time.Minute, UrgencyNormal},
		{"exactly half", constants.ORDER_PREPARING, 10, 5 * time.Minute, UrgencyNormal},
		{"past half", constants.ORDER_PREPARING, 10, 6 * time.Minute, UrgencyWarning},
		{"at grace limit", constants.ORDER_PREPARING, 10, 15 * time.Minute, UrgencyWarning},
		{"past grace", constants.ORDER_PREPARING, 10, 16 * time.Minute, UrgencyOverdue},
		{"instant uses default", constants.ORDER_PREPARING, 0, 5 * time.Minute, UrgencyNormal},
		{"ready ignores elapsed", constants.ORDER_READY, 10, time.Hour, UrgencyReady},
		{"picked up", constants.ORDER_PICKED_UP, 10, time.Hour, UrgencyDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := order(1, 0, tt.prep, tt.status)
			assert.Equal(t, tt.want, Urgency(o, t0.Add(tt.elapsed)))
		})
	}
}

func TestAnnotateKeepsOrder(t *testing.T) {
	a := order(1, 0, 10, constants.ORDER_PREPARING)
	b := order(2, time.Minute, 5, constants.ORDER_PREPARING)
	views := Annotate([]model.Order{b, a}, []model.Order{a, b}, t0.Add(time.Minute))

	if assert.Len(t, views, 2) {
		assert.Equal(t, uint(2), views[0].ID)
		assert.Equal(t, 14, views[0].ETA.RemainingMinutes)
		assert.Equal(t, uint(1), views[1].ID)
	}
}
