package posting

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, rules map[string]posting.AccountRule) (*Service, custody.Repositories) {
	t.Helper()
	repos := persistence.NewRepositories(testutil.NewTestDB(t))
	table, err := posting.NewRuleTable(rules)
	require.NoError(t, err)
	return NewService(repos, posting.NewLedger(table), zap.NewNop()), repos
}

func shares(src, dst, ho, p1, p2 int64) posting.Shares {
	return posting.Shares{
		SourceBranch:      decimal.NewFromInt(src),
		DestinationBranch: decimal.NewFromInt(dst),
		HeadOffice:        decimal.NewFromInt(ho),
		PartnerOne:        decimal.NewFromInt(p1),
		PartnerTwo:        decimal.NewFromInt(p2),
	}
}

func TestCreateScheme_RejectsSharesNotSummingToHundred(t *testing.T) {
	svc, repos := newService(t, posting.DefaultRules())
	ctx := context.Background()

	_, err := svc.CreateScheme(ctx, SchemeRequest{Code: "STD", Shares: shares(40, 20, 20, 10, 9)})
	assert.ErrorIs(t, err, posting.ErrInvalidShareConfiguration)
	assert.Equal(t, shared.KindBadRequest, shared.KindOf(err))

	_, err = repos.Schemes().FindByCode(ctx, "STD")
	assert.ErrorIs(t, err, posting.ErrSchemeNotFound)
}

func TestCreateScheme_DuplicateCode(t *testing.T) {
	svc, _ := newService(t, posting.DefaultRules())
	ctx := context.Background()

	_, err := svc.CreateScheme(ctx, SchemeRequest{Code: "STD", Shares: shares(40, 20, 20, 10, 10)})
	require.NoError(t, err)
	_, err = svc.CreateScheme(ctx, SchemeRequest{Code: "STD", Shares: shares(40, 20, 20, 10, 10)})
	assert.ErrorIs(t, err, posting.ErrSchemeExists)

	again, err := svc.EnsureScheme(ctx, SchemeRequest{Code: "STD", Shares: shares(100, 0, 0, 0, 0)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(again.Shares.SourceBranch))

	list, err := svc.ListSchemes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateShares(t *testing.T) {
	svc, _ := newService(t, posting.DefaultRules())
	ctx := context.Background()
	scheme, err := svc.CreateScheme(ctx, SchemeRequest{Code: "STD", Shares: shares(40, 20, 20, 10, 10)})
	require.NoError(t, err)

	_, err = svc.UpdateShares(ctx, scheme.ID, shares(50, 50, 1, 0, 0))
	assert.ErrorIs(t, err, posting.ErrInvalidShareConfiguration)

	updated, err := svc.UpdateShares(ctx, scheme.ID, shares(50, 0, 50, 0, 0))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(updated.Shares.HeadOffice))

	split, err := svc.PreviewSplit(ctx, "STD", decimal.NewFromInt(1001))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(split.SourceBranch))
	assert.True(t, decimal.NewFromInt(501).Equal(split.HeadOffice))

	_, err = svc.UpdateShares(ctx, uuid.New(), shares(100, 0, 0, 0, 0))
	assert.ErrorIs(t, err, posting.ErrSchemeNotFound)
}

func TestInspect(t *testing.T) {
	rules := posting.DefaultRules()
	delete(rules, "*@"+string(posting.HeadOfficeCommission))
	svc, repos := newService(t, rules)
	ctx := context.Background()

	batch, err := posting.NewEngine().Build(posting.Operation{
		Reference:          "WITHDRAWAL-20240110-abcdef12",
		Direction:          posting.DirectionOut,
		Name:               "Withdrawal",
		Subject:            "SAV01",
		PrincipalAttribute: posting.PrincipalSavingAccount,
		AccountType:        "SAVINGS",
		Amount:             decimal.NewFromInt(150000),
		Fee:                decimal.NewFromInt(1000),
		Commission: posting.Split{
			SourceBranch: decimal.NewFromInt(600),
			HeadOffice:   decimal.NewFromInt(400),
		},
		AccountingDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repos.Batches().SaveBatch(ctx, batch))

	report, err := svc.Inspect(ctx, batch.Reference)
	require.NoError(t, err)
	assert.Len(t, report.Batch.Legs, 3)
	assert.False(t, report.Verification.Balanced())
	assert.Contains(t, report.Verification.Warnings[0], "HeadOffice_Commission")

	_, err = svc.Inspect(ctx, "missing")
	assert.ErrorIs(t, err, posting.ErrBatchNotFound)
}
