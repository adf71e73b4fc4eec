package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// BranchSeed is a branch ready to move cash: an open day, a primary and a
// sub till, each assigned to its own user, and an empty vault.
type BranchSeed struct {
	BranchID      uuid.UUID
	Day           *accountingday.AccountingDay
	PrimaryTeller uuid.UUID
	SubTeller     uuid.UUID
	Vault         uuid.UUID
	PrimaryUser   uuid.UUID
	SubUser       uuid.UUID
}

// SeedBranch writes a BranchSeed through repos
func SeedBranch(t *testing.T, repos custody.Repositories, date time.Time) *BranchSeed {
	t.Helper()
	ctx := context.Background()
	s := &BranchSeed{
		BranchID:    uuid.New(),
		Vault:       uuid.New(),
		PrimaryUser: uuid.New(),
		SubUser:     uuid.New(),
	}

	day, err := accountingday.Open(date, &s.BranchID, false, s.PrimaryUser, "")
	require.NoError(t, err)
	require.NoError(t, repos.Days().Save(ctx, day))
	s.Day = day

	s.PrimaryTeller = seedTill(t, repos, s.BranchID, "P01", true, s.PrimaryUser)
	s.SubTeller = seedTill(t, repos, s.BranchID, "S01", false, s.SubUser)

	vault, err := cash.NewCustodianAccount(s.BranchID, cash.CustodianVault, s.Vault, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repos.Custodians().Save(ctx, vault))
	return s
}

func seedTill(t *testing.T, repos custody.Repositories, branchID uuid.UUID, code string, primary bool, user uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	tl, err := teller.NewTeller(branchID, code, code, primary)
	require.NoError(t, err)
	require.NoError(t, repos.Tellers().Save(ctx, tl))

	kind := cash.CustodianSubTeller
	if primary {
		kind = cash.CustodianPrimaryTeller
	}
	acc, err := cash.NewCustodianAccount(branchID, kind, tl.ID, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repos.Custodians().Save(ctx, acc))

	a, err := teller.Assign(teller.AssignRequest{
		UserID:       user,
		UserBranchID: branchID,
		BranchID:     branchID,
		TellerID:     tl.ID,
		IsPrimary:    primary,
	}, tl, teller.ActiveState{})
	require.NoError(t, err)
	require.NoError(t, repos.Assignments().Save(ctx, a))
	return tl.ID
}

// Provision gives a custodian the cash in set for the seed's day: its
// inventory holds exactly set and its balance matches.
func (s *BranchSeed) Provision(t *testing.T, repos custody.Repositories, custodianID uuid.UUID, set cash.DenominationSet) {
	t.Helper()
	ctx := context.Background()
	acc, err := repos.Custodians().FindByCustodian(ctx, custodianID)
	require.NoError(t, err)

	hist, err := cash.NewProvisioningHistory(acc.Kind, custodianID, s.BranchID, s.Day.Date, set)
	require.NoError(t, err)
	require.NoError(t, repos.Provisioning().Save(ctx, hist))

	if total := set.Total(); total.IsPositive() {
		require.NoError(t, acc.Credit(total))
		require.NoError(t, repos.Custodians().SaveWithLock(ctx, acc))
	}
}

// Balance returns the custodian's current balance
func Balance(t *testing.T, repos custody.Repositories, custodianID uuid.UUID) decimal.Decimal {
	t.Helper()
	acc, err := repos.Custodians().FindByCustodian(context.Background(), custodianID)
	require.NoError(t, err)
	return acc.Balance
}

// CashAtHand returns the custodian's latest denomination counts
func CashAtHand(t *testing.T, repos custody.Repositories, custodianID uuid.UUID) cash.DenominationSet {
	t.Helper()
	hist, err := repos.Provisioning().FindLastUpdated(context.Background(), custodianID)
	require.NoError(t, err)
	require.NotNil(t, hist)
	return hist.Counts
}
