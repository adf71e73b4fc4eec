package persistence

import (
	"context"
	"testing"

	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("sideways"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "status", ValidateSortField("status", DaySortFields, "date"))
	assert.Equal(t, "date", ValidateSortField("", DaySortFields, "date"))
	assert.Equal(t, "date", ValidateSortField("date; DROP TABLE accounting_days", DaySortFields, "date"))
	assert.Equal(t, "requested_at", ValidateSortField("opened_at", CeilingSortFields, "requested_at"))
}

func TestAccountingDayRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAccountingDayRepository(testutil.NewTestDB(t))
	branch := uuid.New()
	for _, d := range []int{10, 12, 11} {
		day, err := accountingday.Open(testutil.Date(2024, 1, d), &branch, false, uuid.New(), "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, day))
	}

	days, _, err := repo.List(ctx, &branch, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 12, days[0].Date.Day(), "newest first by default")

	filter := shared.DefaultFilter()
	filter.OrderBy = "date"
	filter.OrderDir = "asc"
	days, _, err = repo.List(ctx, &branch, filter)
	require.NoError(t, err)
	assert.Equal(t, 10, days[0].Date.Day())

	filter.OrderBy = "unknown_column"
	days, _, err = repo.List(ctx, &branch, filter)
	require.NoError(t, err)
	assert.Equal(t, 10, days[0].Date.Day(), "unknown columns fall back to date")
}
