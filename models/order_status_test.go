package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[OrderStatus]map[OrderStatus]bool{
		StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed: {StatusPreparing: true, StatusCancelled: true},
		StatusPreparing: {StatusReady: true, StatusCancelled: true},
		StatusReady:     {StatusDelivered: true},
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, from := range AllOrderStatuses {
		for _, to := range AllOrderStatuses {
			order := Order{ID: 1, Status: from}
			err := order.TransitionTo(to, now)

			if allowed[from][to] {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, order.Status)
				continue
			}
			assert.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s should be rejected", from, to)
			assert.Equal(t, from, order.Status, "status must stay %s", from)
			assert.Nil(t, order.PreparingAt)
			assert.Nil(t, order.ReadyAt)
			assert.Nil(t, order.DeliveredAt)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusReady.IsTerminal())
	assert.Empty(t, StatusDelivered.NextStatuses())
	assert.Equal(t, []OrderStatus{StatusConfirmed, StatusCancelled}, StatusPending.NextStatuses())
}

func TestTransitionStampsTimestampsOnce(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := Order{Status: StatusConfirmed}

	require.NoError(t, order.TransitionTo(StatusPreparing, t0))
	require.NotNil(t, order.PreparingAt)
	assert.Equal(t, t0, *order.PreparingAt)

	require.NoError(t, order.TransitionTo(StatusReady, t0.Add(10*time.Minute)))
	require.NoError(t, order.TransitionTo(StatusDelivered, t0.Add(15*time.Minute)))

	assert.Equal(t, t0, *order.PreparingAt)
	assert.Equal(t, t0.Add(10*time.Minute), *order.ReadyAt)
	assert.Equal(t, t0.Add(15*time.Minute), *order.DeliveredAt)
	assert.False(t, order.DeliveredAt.Before(*order.ReadyAt))

	// delivered is terminal, so a repeated request cannot move the stamp
	err := order.TransitionTo(StatusDelivered, t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, t0.Add(15*time.Minute), *order.DeliveredAt)
}

func TestTransitionKeepsExistingStamp(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order := Order{Status: StatusConfirmed, PreparingAt: &earlier}

	require.NoError(t, order.TransitionTo(StatusPreparing, earlier.Add(time.Hour)))
	assert.Equal(t, earlier, *order.PreparingAt)
}

func TestTransitionDoesNotTouchTotal(t *testing.T) {
	order := Order{Status: StatusPending, TotalAmount: 42}
	require.NoError(t, order.TransitionTo(StatusConfirmed, time.Now()))
	assert.Equal(t, 42.0, order.TotalAmount)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("ready")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)

	_, err = ParseOrderStatus("served")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	order := Order{Status: StatusPending}
	assert.ErrorIs(t, order.TransitionTo("served", time.Now()), ErrUnknownStatus)
}

func TestRecomputeTotal(t *testing.T) {
	order := Order{
		TotalAmount: 1,
		Items: []OrderItem{
			{Name: "Rendang", Price: 32, Quantity: 2},
			{Name: "Es Teh", Price: 15, Quantity: 1},
		},
	}
	order.RecomputeTotal()
	assert.Equal(t, 79.0, order.TotalAmount)

	order.Items = nil
	order.RecomputeTotal()
	assert.Zero(t, order.TotalAmount)
}
