package ceiling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/infrastructure/lock"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	repos  custody.Repositories
	events *testutil.RecordingPublisher
	svc    *Service
	seed   *testutil.BranchSeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := persistence.NewRepositories(db)
	rules, err := posting.NewRuleTable(posting.DefaultRules())
	require.NoError(t, err)

	f := &fixture{
		repos:  repos,
		events: &testutil.RecordingPublisher{},
		seed:   testutil.SeedBranch(t, repos, testutil.Date(2024, 1, 10)),
	}
	f.svc = NewService(
		repos,
		persistence.NewGormTransactionScope(db),
		lock.NewMemoryLocker(2*time.Second),
		cash.DefaultLedger(),
		posting.NewEngine(),
		posting.NewLedger(rules),
		f.events,
		custody.NoopMetrics{},
		zap.NewNop(),
	)
	return f
}

func (f *fixture) subToPrimary(amount int64, set cash.DenominationSet) CreateRequest {
	return CreateRequest{
		BranchID:      f.seed.BranchID,
		UserID:        f.seed.SubUser,
		Type:          ceiling.SubToPrimary,
		Amount:        decimal.NewFromInt(amount),
		Denominations: set,
	}
}

func TestCeiling_SubToPrimaryEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{10000: 30})
	f.seed.Provision(t, f.repos, f.seed.PrimaryTeller, cash.DenominationSet{5000: 10})

	r, err := f.svc.Create(ctx, f.subToPrimary(200000, cash.DenominationSet{10000: 20}))
	require.NoError(t, err)
	assert.Equal(t, ceiling.StatusPending, r.Status)
	assert.Equal(t, f.seed.SubTeller, r.TellerID)

	approver := uuid.New()
	res, err := f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: approver})
	require.NoError(t, err)
	assert.Equal(t, ceiling.StatusApproved, res.Request.Status)
	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Request.DestinationCustodianID)
	assert.Equal(t, f.seed.PrimaryTeller, *res.Request.DestinationCustodianID)

	assert.True(t, decimal.NewFromInt(100000).Equal(testutil.Balance(t, f.repos, f.seed.SubTeller)))
	assert.True(t, decimal.NewFromInt(250000).Equal(testutil.Balance(t, f.repos, f.seed.PrimaryTeller)))
	assert.Equal(t, cash.DenominationSet{10000: 10}, testutil.CashAtHand(t, f.repos, f.seed.SubTeller))
	assert.Equal(t, cash.DenominationSet{10000: 20, 5000: 10}, testutil.CashAtHand(t, f.repos, f.seed.PrimaryTeller))

	batch, err := f.repos.Batches().FindByReference(ctx, r.Reference)
	require.NoError(t, err)
	require.Len(t, batch.Legs, 1)
	leg := batch.Legs[0]
	assert.True(t, leg.IsPrincipal)
	assert.Equal(t, posting.PrincipalCashCeiling, leg.Key.Attribute)
	assert.True(t, decimal.NewFromInt(200000).Equal(leg.Amount))

	op, err := f.repos.TellerOperations().FindByReference(ctx, r.Reference)
	require.NoError(t, err)
	assert.Equal(t, f.seed.SubTeller, op.SourceCustodianID)
	assert.Equal(t, f.seed.PrimaryTeller, op.DestinationCustodianID)
	assert.Equal(t, approver, op.OperatorID)

	records, err := f.repos.Denominations().FindByReference(ctx, r.Reference)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(20), records[0].Count)

	assert.Len(t, f.events.Events(ceiling.EventTypeApproved), 1)

	_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: approver})
	assert.ErrorIs(t, err, ceiling.ErrAlreadyValidated)
	assert.True(t, decimal.NewFromInt(100000).Equal(testutil.Balance(t, f.repos, f.seed.SubTeller)))
	assert.True(t, decimal.NewFromInt(250000).Equal(testutil.Balance(t, f.repos, f.seed.PrimaryTeller)))
}

func TestCeiling_PrimaryToVaultStartsVaultInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed.Provision(t, f.repos, f.seed.PrimaryTeller, cash.DenominationSet{10000: 5, 1000: 10})

	r, err := f.svc.Create(ctx, CreateRequest{
		BranchID:      f.seed.BranchID,
		UserID:        f.seed.PrimaryUser,
		Type:          ceiling.PrimaryToVault,
		Amount:        decimal.NewFromInt(50000),
		Denominations: cash.DenominationSet{10000: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, f.seed.PrimaryTeller, r.TellerID)

	_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(50000).Equal(testutil.Balance(t, f.repos, f.seed.Vault)))
	assert.Equal(t, cash.DenominationSet{10000: 5}, testutil.CashAtHand(t, f.repos, f.seed.Vault))
	assert.Equal(t, cash.DenominationSet{1000: 10}, testutil.CashAtHand(t, f.repos, f.seed.PrimaryTeller))
}

func TestCreate_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no active teller", func(t *testing.T) {
		f := newFixture(t)
		req := f.subToPrimary(10000, cash.DenominationSet{10000: 1})
		req.UserID = uuid.New()
		_, err := f.svc.Create(ctx, req)
		assert.ErrorIs(t, err, teller.ErrNoActiveTeller)
	})

	t.Run("duplicate pending", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.subToPrimary(20000, cash.DenominationSet{10000: 2}))
		assert.ErrorIs(t, err, ceiling.ErrDuplicatePendingRequest)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})

	t.Run("denominations do not match", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{5000: 1}))
		assert.ErrorIs(t, err, cash.ErrDenominationMismatch)
	})

	t.Run("invalid type", func(t *testing.T) {
		f := newFixture(t)
		req := f.subToPrimary(10000, cash.DenominationSet{10000: 1})
		req.Type = "SIDEWAYS"
		_, err := f.svc.Create(ctx, req)
		assert.Equal(t, shared.KindBadRequest, shared.KindOf(err))
	})
}

func TestCreate_ConcurrentSameTellerOnlyOneSucceeds(t *testing.T) {
	f := newFixture(t)

	const callers = 2
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if shared.KindOf(err) == shared.KindConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestApprove_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no provisioning history", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
		assert.ErrorIs(t, err, cash.ErrNoProvisioningHistory)
	})

	t.Run("insufficient funds rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{10000: 1})
		r, err := f.svc.Create(ctx, f.subToPrimary(20000, cash.DenominationSet{10000: 2}))
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
		assert.ErrorIs(t, err, cash.ErrInsufficientFunds)

		got, err := f.svc.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, ceiling.StatusPending, got.Status)
		assert.True(t, decimal.NewFromInt(10000).Equal(testutil.Balance(t, f.repos, f.seed.SubTeller)))
		assert.True(t, testutil.Balance(t, f.repos, f.seed.PrimaryTeller).IsZero())
		_, err = f.repos.Batches().FindByReference(ctx, r.Reference)
		assert.Error(t, err)
	})

	t.Run("denomination mix not at hand", func(t *testing.T) {
		f := newFixture(t)
		f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{5000: 4})
		r, err := f.svc.Create(ctx, f.subToPrimary(20000, cash.DenominationSet{10000: 2}))
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
		assert.ErrorIs(t, err, cash.ErrInsufficientCashAtHand)
		assert.True(t, decimal.NewFromInt(20000).Equal(testutil.Balance(t, f.repos, f.seed.SubTeller)))
	})

	t.Run("no open day", func(t *testing.T) {
		f := newFixture(t)
		f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{10000: 1})
		r, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
		require.NoError(t, err)

		day := f.seed.Day
		require.NoError(t, day.Close(uuid.New(), ""))
		require.NoError(t, f.repos.Days().SaveWithLock(ctx, day))

		_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
		assert.ErrorIs(t, err, accountingday.ErrNoOpenDay)
	})

	t.Run("integrity violation", func(t *testing.T) {
		f := newFixture(t)
		f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{10000: 2})
		acc, err := f.repos.Custodians().FindByCustodian(ctx, f.seed.SubTeller)
		require.NoError(t, err)
		require.NoError(t, acc.Credit(decimal.NewFromInt(1)))
		require.NoError(t, f.repos.Custodians().SaveWithLock(ctx, acc))

		r, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
		require.NoError(t, err)
		_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
		assert.ErrorIs(t, err, cash.ErrBalanceIntegrityViolation)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Approve(ctx, DecisionRequest{RequestID: uuid.New()})
		assert.ErrorIs(t, err, ceiling.ErrRequestNotFound)
	})
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed.Provision(t, f.repos, f.seed.SubTeller, cash.DenominationSet{10000: 1})

	r, err := f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New(), Reason: "count again"})
	require.NoError(t, err)
	assert.Equal(t, ceiling.StatusRejected, rejected.Status)
	assert.Equal(t, "count again", rejected.RejectReason)

	_, err = f.svc.Approve(ctx, DecisionRequest{RequestID: r.ID, UserID: uuid.New()})
	assert.ErrorIs(t, err, ceiling.ErrAlreadyRejected)
	assert.True(t, decimal.NewFromInt(10000).Equal(testutil.Balance(t, f.repos, f.seed.SubTeller)))

	// a rejected request no longer blocks a new one
	_, err = f.svc.Create(ctx, f.subToPrimary(10000, cash.DenominationSet{10000: 1}))
	require.NoError(t, err)

	all, total, err := f.svc.List(ctx, f.seed.BranchID, "", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	pending, total, err := f.svc.List(ctx, f.seed.BranchID, ceiling.StatusPending, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, pending, 1)
}
