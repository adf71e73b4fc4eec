package accountingday

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/lock"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	repos    custody.Repositories
	branches *testutil.MockBranchDirectory
	events   *testutil.RecordingPublisher
	svc      *Service
	user     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		repos:    persistence.NewRepositories(db),
		branches: &testutil.MockBranchDirectory{},
		events:   &testutil.RecordingPublisher{},
		user:     uuid.New(),
	}
	f.svc = NewService(
		f.repos,
		persistence.NewGormTransactionScope(db),
		lock.NewMemoryLocker(2*time.Second),
		f.branches,
		f.events,
		custody.NoopMetrics{},
		zap.NewNop(),
	)
	return f
}

func (f *fixture) branch(name string) uuid.UUID {
	id := uuid.New()
	f.branches.On("GetBranchByID", mock.Anything, id).Return(&custody.Branch{ID: id, Name: name}, nil)
	return id
}

func (f *fixture) open(t *testing.T, date time.Time, branches ...uuid.UUID) *DayBatchResult {
	t.Helper()
	res, err := f.svc.Open(context.Background(), TransitionRequest{Date: date, BranchIDs: branches, UserID: f.user})
	require.NoError(t, err)
	return res
}

func (f *fixture) close(t *testing.T, date time.Time, branches ...uuid.UUID) *DayBatchResult {
	t.Helper()
	res, err := f.svc.Close(context.Background(), TransitionRequest{Date: date, BranchIDs: branches, UserID: f.user})
	require.NoError(t, err)
	return res
}

func TestOpen_PartialFailureReportsEveryBranch(t *testing.T) {
	f := newFixture(t)
	douala, yaounde := f.branch("Douala"), f.branch("Yaounde")
	day := testutil.Date(2024, 3, 4)

	first := f.open(t, day, yaounde)
	require.True(t, first.Success)

	res := f.open(t, day, douala, yaounde)
	assert.False(t, res.Success)
	assert.Equal(t, shared.KindConflict, res.Status)
	assert.Equal(t, "Open accounting day succeeded for Douala; failed for Yaounde", res.Message)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Success)
	assert.False(t, res.Items[1].Success)
	assert.Equal(t, yaounde.String(), res.Items[1].Target)
	require.Len(t, res.Days, 1)
	assert.Equal(t, &douala, res.Days[0].BranchID)

	assert.Len(t, f.events.Events(accountingday.EventTypeOpened), 2)
}

func TestOpen_ClosedDateMustBeReopened(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")
	day := testutil.Date(2024, 3, 4)

	require.True(t, f.open(t, day, b).Success)
	require.True(t, f.close(t, day, b).Success)

	res := f.open(t, day, b)
	assert.False(t, res.Success)
	assert.Equal(t, shared.KindConflict, res.Items[0].Status)
	assert.Contains(t, res.Items[0].Message, "reopen")
}

func TestOpen_PreviousDayStillOpen(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")

	require.True(t, f.open(t, testutil.Date(2024, 3, 4), b).Success)
	res := f.open(t, testutil.Date(2024, 3, 5), b)

	assert.False(t, res.Success)
	assert.Equal(t, shared.KindConflict, res.Status)
	assert.Contains(t, res.Items[0].Message, "2024-03-04")
}

func TestOpen_CentralizedFansOutOverBranches(t *testing.T) {
	f := newFixture(t)
	a, b := uuid.New(), uuid.New()
	f.branches.On("GetBranches", mock.Anything).Return([]custody.Branch{{ID: a, Name: "A"}, {ID: b, Name: "B"}}, nil)

	res, err := f.svc.Open(context.Background(), TransitionRequest{Date: testutil.Date(2024, 3, 4), Centralized: true, UserID: f.user})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Days, 2)
	for _, d := range res.Days {
		assert.True(t, d.IsCentralized)
		assert.NotNil(t, d.BranchID)
	}

	cur, err := f.svc.GetCurrent(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, b, *cur.BranchID)
}

func TestOpen_CentralizedWithoutBranchesUsesSystemRecord(t *testing.T) {
	f := newFixture(t)
	f.branches.On("GetBranches", mock.Anything).Return([]custody.Branch{}, nil)

	res, err := f.svc.Open(context.Background(), TransitionRequest{Date: testutil.Date(2024, 3, 4), Centralized: true, UserID: f.user})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, accountingday.CentralisedSystemName, res.Items[0].Name)
	assert.Nil(t, res.Days[0].BranchID)

	cur, err := f.svc.GetCurrent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, cur.BranchID)
	assert.True(t, cur.IsCentralized)
}

func TestOpen_UnknownBranchIsLabelledCentralised(t *testing.T) {
	f := newFixture(t)
	unknown := uuid.New()
	f.branches.On("GetBranchByID", mock.Anything, unknown).Return(nil, custody.ErrBranchNotFound)

	res := f.open(t, testutil.Date(2024, 3, 4), unknown)
	require.True(t, res.Success)
	assert.Equal(t, accountingday.CentralisedSystemName, res.Items[0].Name)
}

func TestOpen_RequiresBranchesOrCentralized(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Open(context.Background(), TransitionRequest{Date: testutil.Date(2024, 3, 4)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.Open(context.Background(), TransitionRequest{BranchIDs: []uuid.UUID{uuid.New()}})
	assert.Equal(t, shared.KindBadRequest, shared.KindOf(err))
}

func TestGetCurrent_NoOpenDay(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetCurrent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, accountingday.ErrNoOpenDay)
}

func TestCloseAndReopen_FreezeAndThawProvisioning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.branch("Douala")
	day1, day2 := testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 5)

	till := uuid.New()
	acc, err := cash.NewCustodianAccount(b, cash.CustodianSubTeller, till, decimal.NewFromInt(15000))
	require.NoError(t, err)
	require.NoError(t, f.repos.Custodians().Save(ctx, acc))
	hist, err := cash.NewProvisioningHistory(cash.CustodianSubTeller, till, b, day1, cash.DenominationSet{10000: 1, 5000: 1})
	require.NoError(t, err)
	require.NoError(t, f.repos.Provisioning().Save(ctx, hist))

	require.True(t, f.open(t, day1, b).Success)
	require.True(t, f.close(t, day1, b).Success)

	frozen, err := f.repos.Provisioning().FindByID(ctx, hist.ID)
	require.NoError(t, err)
	assert.Equal(t, cash.ProvisioningFrozen, frozen.Status)

	reopened, err := f.svc.Reopen(ctx, ReopenRequest{Date: day1, BranchID: &b, UserID: f.user})
	require.NoError(t, err)
	require.True(t, reopened.Success, reopened.Message)
	assert.Equal(t, 1, reopened.Days[0].ReopenCount)

	thawed, err := f.repos.Provisioning().FindByID(ctx, hist.ID)
	require.NoError(t, err)
	assert.Equal(t, cash.ProvisioningOpen, thawed.Status)

	require.True(t, f.close(t, time.Time{}, b).Success)
	res := f.open(t, day2, b)
	require.True(t, res.Success, res.Message)

	next, err := f.repos.Provisioning().FindLastUpdated(ctx, till)
	require.NoError(t, err)
	assert.True(t, day2.Equal(next.AccountingDate))
	assert.Equal(t, cash.DenominationSet{10000: 1, 5000: 1}, next.OpeningCounts)

	attached, err := f.repos.Custodians().FindByCustodian(ctx, till)
	require.NoError(t, err)
	require.NotNil(t, attached.OpeningDayID)
	assert.Equal(t, res.Days[0].ID, *attached.OpeningDayID)
}

func TestReopen_Rules(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")
	day := testutil.Date(2024, 3, 4)

	res, err := f.svc.Reopen(context.Background(), ReopenRequest{Date: day, BranchID: &b, UserID: f.user})
	require.NoError(t, err)
	assert.Equal(t, shared.KindNotFound, res.Status)

	require.True(t, f.open(t, day, b).Success)
	res, err = f.svc.Reopen(context.Background(), ReopenRequest{Date: day, BranchID: &b, UserID: f.user})
	require.NoError(t, err)
	assert.Equal(t, shared.KindForbidden, res.Status)

	require.True(t, f.close(t, day, b).Success)
	require.True(t, f.open(t, testutil.Date(2024, 3, 5), b).Success)
	res, err = f.svc.Reopen(context.Background(), ReopenRequest{Date: day, BranchID: &b, UserID: f.user})
	require.NoError(t, err)
	assert.Equal(t, shared.KindConflict, res.Status)
}

func TestClose_NothingOpen(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")

	t.Run("zero date with no open day", func(t *testing.T) {
		res := f.close(t, time.Time{}, b)
		assert.False(t, res.Success)
		assert.Equal(t, shared.KindConflict, res.Status)
		require.Len(t, res.Items, 1)
		assert.Equal(t, shared.KindConflict, res.Items[0].Status)
	})

	t.Run("date never opened", func(t *testing.T) {
		res := f.close(t, testutil.Date(2024, 3, 4), b)
		assert.False(t, res.Success)
		assert.Equal(t, shared.KindConflict, res.Status)
		require.Len(t, res.Items, 1)
		assert.Contains(t, res.Items[0].Message, "2024-03-04")
	})

	t.Run("day already closed", func(t *testing.T) {
		day := testutil.Date(2024, 3, 5)
		require.True(t, f.open(t, day, b).Success)
		require.True(t, f.close(t, day, b).Success)
		res := f.close(t, day, b)
		assert.Equal(t, shared.KindConflict, res.Status)
	})
}

func TestOpen_ConcurrentCallsOpenOnce(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")
	day := testutil.Date(2024, 3, 4)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*DayBatchResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Open(context.Background(), TransitionRequest{Date: day, BranchIDs: []uuid.UUID{b}, UserID: f.user})
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	var opened int
	for _, r := range results {
		require.NotNil(t, r)
		if r.Success {
			opened++
		}
	}
	assert.Equal(t, 1, opened)

	days, total, err := f.svc.List(context.Background(), &b, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, days, 1)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	b := f.branch("Douala")
	day := testutil.Date(2024, 3, 4)
	res := f.open(t, day, b)
	require.True(t, res.Success)

	require.NoError(t, f.svc.Delete(context.Background(), res.Days[0].ID))
	_, err := f.svc.GetCurrent(context.Background(), b)
	assert.ErrorIs(t, err, accountingday.ErrNoOpenDay)

	assert.True(t, f.open(t, day, b).Success)
}
