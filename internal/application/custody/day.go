package custody

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CurrentDay returns the open accounting day that gates postings for the
// branch: its own open day, else the centralized one.
func CurrentDay(ctx context.Context, days accountingday.Repository, branchID uuid.UUID) (*accountingday.AccountingDay, error) {
	if branchID != uuid.Nil {
		day, err := days.FindCurrentOpen(ctx, &branchID)
		if err != nil {
			return nil, err
		}
		if day != nil {
			return day, nil
		}
	}
	day, err := days.FindCurrentOpen(ctx, nil)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, accountingday.ErrNoOpenDay
	}
	return day, nil
}

// CurrentProvisioning returns the custodian's open inventory for date.
// A record left from an earlier day is carried forward and saved; a
// custodian that was never provisioned fails with ErrNoProvisioningHistory.
func CurrentProvisioning(ctx context.Context, repo cash.ProvisioningHistoryRepository, custodianID uuid.UUID, date time.Time) (*cash.ProvisioningHistory, error) {
	date = shared.DateOnly(date)
	last, err := repo.FindLastUpdated(ctx, custodianID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, cash.ErrNoProvisioningHistory.WithMessage(fmt.Sprintf("No provisioning history for custodian %s", custodianID))
	}
	switch {
	case last.AccountingDate.Equal(date):
		if !last.IsOpen() {
			return nil, cash.ErrProvisioningFrozen
		}
		return last, nil
	case last.AccountingDate.After(date):
		return nil, cash.ErrProvisioningFrozen.WithMessage(fmt.Sprintf(
			"Custodian %s already has provisioning for %s", custodianID, last.AccountingDate.Format(shared.DateLayout)))
	}
	next, err := last.CarryForward(date)
	if err != nil {
		return nil, err
	}
	if last.IsOpen() {
		_ = last.Freeze()
		if err := repo.SaveWithLock(ctx, last); err != nil {
			return nil, err
		}
	}
	if err := repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save carried forward provisioning: %w", err)
	}
	return next, nil
}

// ReceivingProvisioning returns the inventory of a custodian about to take
// cash in. A custodian that never held cash gets an empty record for the
// date; created tells the caller to insert it rather than update it.
func ReceivingProvisioning(ctx context.Context, repo cash.ProvisioningHistoryRepository, acc *cash.CustodianAccount, date time.Time) (hist *cash.ProvisioningHistory, created bool, err error) {
	hist, err = CurrentProvisioning(ctx, repo, acc.CustodianID, date)
	if err == nil {
		return hist, false, nil
	}
	if !errors.Is(err, cash.ErrNoProvisioningHistory) {
		return nil, false, err
	}
	hist, err = cash.NewProvisioningHistory(acc.Kind, acc.CustodianID, acc.BranchID, date, cash.DenominationSet{})
	if err != nil {
		return nil, false, err
	}
	return hist, true, nil
}
