package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/tableside/internal/entity"
)

func view(id int64, number string, status entity.Status, created time.Time) OrderView {
	return OrderView{ID: id, Number: number, Status: status, CreatedAt: created}
}

func TestMatchExact(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	orders := []OrderView{
		view(1, "#042", entity.StatusPending, base),
		view(2, "#043", entity.StatusPending, base.Add(time.Minute)),
	}

	got, ok := Match("#042", orders)
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)
}

func TestMatchStripsHashMarker(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	orders := []OrderView{
		view(1, "042", entity.StatusPending, base),
	}

	got, ok := Match("#042", orders)
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	got, ok = Match("042", []OrderView{view(2, "#042", entity.StatusPending, base)})
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestMatchContainment(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("lost zero padding", func(t *testing.T) {
		got, ok := Match("#042", []OrderView{view(1, "42", entity.StatusPending, base)})
		require.True(t, ok)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("storage prefix", func(t *testing.T) {
		got, ok := Match("042", []OrderView{view(1, "ORD-042", entity.StatusPending, base)})
		require.True(t, ok)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("short number never swallows a longer one", func(t *testing.T) {
		_, ok := Match("#7", []OrderView{view(1, "#73", entity.StatusPending, base)})
		assert.False(t, ok)

		_, ok = Match("73", []OrderView{view(2, "173", entity.StatusPending, base)})
		assert.False(t, ok)
	})
}

func TestMatchStageOrder(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	orders := []OrderView{
		view(1, "42", entity.StatusPending, base.Add(time.Hour)),
		view(2, "#042", entity.StatusPending, base),
	}

	// An exact hit wins even when a later stage would prefer a newer record.
	got, ok := Match("#042", orders)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestMatchNewestWinsWithinStage(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	orders := []OrderView{
		view(1, "#042", entity.StatusCompleted, base.Add(-48*time.Hour)),
		view(2, "#042", entity.StatusPending, base),
	}

	got, ok := Match("#042", orders)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestMatchMiss(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	_, ok := Match("#042", []OrderView{view(1, "#777", entity.StatusPending, base)})
	assert.False(t, ok)

	_, ok = Match("#042", nil)
	assert.False(t, ok)
}

func TestQueuePosition(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	mine := view(3, "#042", entity.StatusPending, base.Add(2*time.Minute))
	orders := []OrderView{
		view(1, "#100", entity.StatusPending, base),
		view(2, "#101", entity.StatusConfirmed, base.Add(time.Minute)),
		mine,
		view(4, "#102", entity.StatusPending, base.Add(3*time.Minute)),
	}

	// One pending order ahead, the confirmed one does not count.
	assert.Equal(t, 2, QueuePosition("#042", mine, orders))
}

func TestQueuePositionExcludesSelfUnderDrift(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	mine := view(2, "42", entity.StatusPending, base.Add(time.Minute))
	orders := []OrderView{
		view(1, "#100", entity.StatusPending, base),
		mine,
	}

	// The tracked number carries the "#" the stored record lost; the order
	// must still not count itself.
	assert.Equal(t, 2, QueuePosition("#042", mine, orders))
}

func TestQueuePositionNonPending(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	mine := view(1, "#042", entity.StatusReady, base)
	assert.Equal(t, 0, QueuePosition("#042", mine, []OrderView{mine}))
}
