package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusReady, StatusCompleted} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("cancelled").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusBefore(t *testing.T) {
	assert.True(t, StatusPending.Before(StatusConfirmed))
	assert.True(t, StatusPending.Before(StatusCompleted))
	assert.False(t, StatusReady.Before(StatusReady))
	assert.False(t, StatusCompleted.Before(StatusPending))
}

func TestStatusCanTransition(t *testing.T) {
	legal := map[Status]Status{
		StatusPending:   StatusConfirmed,
		StatusConfirmed: StatusReady,
		StatusReady:     StatusCompleted,
	}
	for from, to := range legal {
		assert.True(t, from.CanTransition(to), "%s -> %s", from, to)
	}

	t.Run("no skipping", func(t *testing.T) {
		assert.False(t, StatusPending.CanTransition(StatusReady))
		assert.False(t, StatusPending.CanTransition(StatusCompleted))
		assert.False(t, StatusConfirmed.CanTransition(StatusCompleted))
	})

	t.Run("no regression", func(t *testing.T) {
		assert.False(t, StatusConfirmed.CanTransition(StatusPending))
		assert.False(t, StatusCompleted.CanTransition(StatusReady))
	})

	t.Run("terminal", func(t *testing.T) {
		assert.False(t, StatusCompleted.CanTransition(StatusCompleted))
		assert.False(t, StatusCompleted.CanTransition(StatusPending))
	})
}

func TestOrderItemTotal(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{UnitPrice: 2500, Quantity: 2},
			{UnitPrice: 5000, Quantity: 1},
		},
	}
	assert.Equal(t, int64(10000), order.ItemTotal())
}
