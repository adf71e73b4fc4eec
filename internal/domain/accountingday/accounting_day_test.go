package accountingday

import (
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func TestOpen(t *testing.T) {
	t.Run("branch day", func(t *testing.T) {
		branch := uuid.New()
		d, err := Open(day, &branch, false, uuid.New(), "")
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, d.Status)
		assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d.Date)
		assert.True(t, d.IsOpen())
		require.Len(t, d.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeOpened, d.GetDomainEvents()[0].EventType())
	})

	t.Run("centralized day without branch", func(t *testing.T) {
		d, err := Open(day, nil, true, uuid.New(), "")
		require.NoError(t, err)
		assert.Nil(t, d.BranchID)
		assert.Equal(t, uuid.Nil, d.BranchKey())
	})

	t.Run("branch required when not centralized", func(t *testing.T) {
		_, err := Open(day, nil, false, uuid.New(), "")
		assert.Error(t, err)
	})
}

func TestTransitions(t *testing.T) {
	branch := uuid.New()
	d, err := Open(day, &branch, false, uuid.New(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, d.Reopen(uuid.New(), ""), ErrNotClosed)

	closer := uuid.New()
	require.NoError(t, d.Close(closer, "eod"))
	assert.Equal(t, StatusClosed, d.Status)
	assert.Equal(t, &closer, d.ClosedBy)
	assert.Equal(t, "eod", d.Note)
	assert.False(t, d.IsOpen())

	assert.ErrorIs(t, d.Close(closer, ""), ErrNotOpen)

	require.NoError(t, d.Reopen(uuid.New(), "late deposit"))
	assert.Equal(t, StatusOpen, d.Status)
	assert.NotNil(t, d.ReopenedAt)
	assert.Equal(t, 1, d.ReopenCount)

	require.NoError(t, d.Close(closer, ""))
	assert.Equal(t, StatusClosed, d.Status)
}

func TestDelete(t *testing.T) {
	branch := uuid.New()
	d, err := Open(day, &branch, false, uuid.New(), "")
	require.NoError(t, err)
	d.Delete()
	assert.Equal(t, shared.LifecycleDeleted, d.Lifecycle)
	assert.False(t, d.IsOpen())
	assert.ErrorIs(t, d.Close(uuid.New(), ""), ErrNotOpen)
}
