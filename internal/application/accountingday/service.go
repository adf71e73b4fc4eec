// Package accountingday runs the accounting day lifecycle of the branches:
// open, close and reopen, fanned out per branch with one outcome each.
package accountingday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionOpen   = "Open accounting day"
	ActionClose  = "Close accounting day"
	ActionReopen = "Reopen accounting day"
)

// Service opens and closes accounting days
type Service struct {
	repos    custody.Repositories
	txScope  custody.TransactionScope
	locker   custody.KeyLocker
	branches custody.BranchDirectory
	events   shared.EventPublisher
	metrics  custody.Metrics
	logger   *zap.Logger
}

// NewService creates a new accounting day service
func NewService(
	repos custody.Repositories,
	txScope custody.TransactionScope,
	locker custody.KeyLocker,
	branches custody.BranchDirectory,
	events shared.EventPublisher,
	metrics custody.Metrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = custody.NoopMetrics{}
	}
	return &Service{
		repos:    repos,
		txScope:  txScope,
		locker:   locker,
		branches: branches,
		events:   events,
		metrics:  metrics,
		logger:   logger,
	}
}

// TransitionRequest targets either the listed branches or, when
// Centralized is set, every branch the directory knows.
type TransitionRequest struct {
	Date        time.Time
	BranchIDs   []uuid.UUID
	Centralized bool
	UserID      uuid.UUID
	Note        string
}

// ReopenRequest addresses one day. A nil branch is the centralized record.
type ReopenRequest struct {
	Date     time.Time
	BranchID *uuid.UUID
	UserID   uuid.UUID
	Note     string
}

// DayBatchResult is the per-branch breakdown of a transition
type DayBatchResult struct {
	shared.Outcome
	Days []*accountingday.AccountingDay `json:"days,omitempty"`
}

type target struct {
	branchID *uuid.UUID
	name     string
}

func (t target) key() uuid.UUID {
	if t.branchID == nil {
		return uuid.Nil
	}
	return *t.branchID
}

func (t target) id() string {
	if t.branchID == nil {
		return "centralised"
	}
	return t.branchID.String()
}

// Open opens req.Date for every targeted branch. Each branch commits or
// fails on its own; the error return is reserved for invalid requests and
// directory failures.
func (s *Service) Open(ctx context.Context, req TransitionRequest) (*DayBatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accounting_day", "open",
		telemetry.SpanAttrDate, req.Date.Format(shared.DateLayout))
	defer span.End()

	if req.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Accounting date is required")
	}
	targets, err := s.resolveTargets(ctx, req.BranchIDs, req.Centralized)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrBranchCount, len(targets))

	date := shared.DateOnly(req.Date)
	return s.run(ctx, ActionOpen, "opened", targets, func(ctx context.Context, t target) (*accountingday.AccountingDay, error) {
		return s.openOne(ctx, t, date, req)
	}), nil
}

// Close closes req.Date for every targeted branch and freezes the
// branch's provisioning for that date. A zero date closes whichever day
// is currently open.
func (s *Service) Close(ctx context.Context, req TransitionRequest) (*DayBatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accounting_day", "close")
	defer span.End()

	targets, err := s.resolveTargets(ctx, req.BranchIDs, req.Centralized)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrBranchCount, len(targets))

	return s.run(ctx, ActionClose, "closed", targets, func(ctx context.Context, t target) (*accountingday.AccountingDay, error) {
		return s.closeOne(ctx, t, req)
	}), nil
}

// Reopen moves a closed day back to open and thaws its provisioning
func (s *Service) Reopen(ctx context.Context, req ReopenRequest) (*DayBatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accounting_day", "reopen",
		telemetry.SpanAttrDate, req.Date.Format(shared.DateLayout))
	defer span.End()

	if req.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Accounting date is required")
	}
	t := target{branchID: req.BranchID, name: accountingday.CentralisedSystemName}
	if req.BranchID != nil && *req.BranchID == uuid.Nil {
		t.branchID = nil
	}
	if t.branchID != nil {
		t.name = s.branchName(ctx, *t.branchID)
	}

	date := shared.DateOnly(req.Date)
	return s.run(ctx, ActionReopen, "reopened", []target{t}, func(ctx context.Context, t target) (*accountingday.AccountingDay, error) {
		return s.reopenOne(ctx, t, date, req)
	}), nil
}

// GetCurrent returns the day gating postings for the branch, falling back
// to the centralized day.
func (s *Service) GetCurrent(ctx context.Context, branchID uuid.UUID) (*accountingday.AccountingDay, error) {
	return custody.CurrentDay(ctx, s.repos.Days(), branchID)
}

// List returns a page of the branch's days, newest first
func (s *Service) List(ctx context.Context, branchID *uuid.UUID, filter shared.Filter) ([]accountingday.AccountingDay, int64, error) {
	return s.repos.Days().List(ctx, branchID, filter)
}

// Delete soft-deletes a day. It is an administrative cleanup and does not
// touch provisioning.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	day, err := s.repos.Days().FindByID(ctx, id)
	if err != nil {
		return err
	}
	release, err := custody.AcquireAll(ctx, s.locker,
		custody.DayBranchKey(day.BranchKey()), custody.DayKey(day.BranchKey(), day.Date))
	if err != nil {
		return err
	}
	defer release()

	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		d, err := repos.Days().FindByID(ctx, id)
		if err != nil {
			return err
		}
		d.Delete()
		return repos.Days().SaveWithLock(ctx, d)
	})
	if err != nil {
		return err
	}
	s.logger.Info("accounting day deleted",
		zap.String("day_id", id.String()),
		zap.String("date", day.Date.Format(shared.DateLayout)),
	)
	return nil
}

func (s *Service) resolveTargets(ctx context.Context, branchIDs []uuid.UUID, centralized bool) ([]target, error) {
	if centralized {
		branches, err := s.branches.GetBranches(ctx)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		if len(branches) == 0 {
			return []target{{name: accountingday.CentralisedSystemName}}, nil
		}
		targets := make([]target, 0, len(branches))
		for _, b := range branches {
			id := b.ID
			targets = append(targets, target{branchID: &id, name: b.Name})
		}
		return targets, nil
	}

	if len(branchIDs) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("At least one branch is required unless the day is centralized")
	}
	seen := make(map[uuid.UUID]struct{}, len(branchIDs))
	targets := make([]target, 0, len(branchIDs))
	for _, id := range branchIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if id == uuid.Nil {
			targets = append(targets, target{name: accountingday.CentralisedSystemName})
			continue
		}
		branchID := id
		targets = append(targets, target{branchID: &branchID, name: s.branchName(ctx, id)})
	}
	return targets, nil
}

func (s *Service) branchName(ctx context.Context, id uuid.UUID) string {
	b, err := s.branches.GetBranchByID(ctx, id)
	if err != nil || b == nil {
		s.logger.Debug("branch not resolved, using centralised label",
			zap.String("branch_id", id.String()), zap.Error(err))
		return accountingday.CentralisedSystemName
	}
	return b.Name
}

func (s *Service) run(
	ctx context.Context,
	action, verb string,
	targets []target,
	fn func(context.Context, target) (*accountingday.AccountingDay, error),
) *DayBatchResult {
	result := &DayBatchResult{}
	entries := make([]shared.OutcomeEntry, 0, len(targets))
	var succeeded, failed int

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			entries = append(entries, shared.EntryFromError(t.id(), t.name, err))
			failed++
			continue
		}
		day, err := fn(ctx, t)
		if err != nil {
			s.logger.Warn("accounting day transition failed",
				zap.String("action", action),
				zap.String("branch", t.name),
				zap.String("branch_id", t.id()),
				zap.Error(err),
			)
			entries = append(entries, shared.EntryFromError(t.id(), t.name, err))
			failed++
			continue
		}

		succeeded++
		result.Days = append(result.Days, day)
		entries = append(entries, shared.OutcomeEntry{
			Target:  t.id(),
			Name:    t.name,
			Success: true,
			Message: fmt.Sprintf("Accounting day %s %s", day.Date.Format(shared.DateLayout), verb),
		})
		s.publish(ctx, day)
	}

	result.Outcome = shared.Summarize(action, entries)
	s.metrics.RecordDayTransition(ctx, action, succeeded, failed)
	s.logger.Info(result.Message, zap.Int("succeeded", succeeded), zap.Int("failed", failed))
	return result
}

func (s *Service) lockDay(ctx context.Context, branch uuid.UUID, date time.Time) (func(), error) {
	return custody.AcquireAll(ctx, s.locker, custody.DayBranchKey(branch), custody.DayKey(branch, date))
}

func (s *Service) openOne(ctx context.Context, t target, date time.Time, req TransitionRequest) (*accountingday.AccountingDay, error) {
	release, err := s.lockDay(ctx, t.key(), date)
	if err != nil {
		return nil, err
	}
	defer release()

	var day *accountingday.AccountingDay
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		existing, err := repos.Days().FindByBranchAndDate(ctx, t.branchID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == accountingday.StatusOpen {
				return accountingday.ErrAlreadyOpen.WithMessage(
					fmt.Sprintf("Accounting day %s is already open", date.Format(shared.DateLayout)))
			}
			return accountingday.ErrAlreadyClosed.WithMessage(
				fmt.Sprintf("Accounting day %s was already closed, reopen it instead", date.Format(shared.DateLayout)))
		}

		current, err := repos.Days().FindCurrentOpen(ctx, t.branchID)
		if err != nil {
			return err
		}
		if current != nil {
			return accountingday.ErrPreviousDayStillOpen.WithMessage(
				fmt.Sprintf("Accounting day %s is still open, close it first", current.Date.Format(shared.DateLayout)))
		}

		d, err := accountingday.Open(date, t.branchID, req.Centralized, req.UserID, req.Note)
		if err != nil {
			return err
		}
		if err := repos.Days().Save(ctx, d); err != nil {
			return fmt.Errorf("save accounting day: %w", err)
		}
		if t.branchID != nil {
			if err := s.provisionBranch(ctx, repos, *t.branchID, d); err != nil {
				return err
			}
		}
		day = d
		return nil
	})
	return day, err
}

// provisionBranch attaches the new day to every custodian of the branch
// and carries their inventories forward.
func (s *Service) provisionBranch(ctx context.Context, repos custody.Repositories, branchID uuid.UUID, day *accountingday.AccountingDay) error {
	accounts, err := repos.Custodians().FindByBranch(ctx, branchID)
	if err != nil {
		return err
	}
	for i := range accounts {
		acc := &accounts[i]
		if _, err := custody.CurrentProvisioning(ctx, repos.Provisioning(), acc.CustodianID, day.Date); err != nil {
			if !errors.Is(err, cash.ErrNoProvisioningHistory) && !errors.Is(err, cash.ErrProvisioningFrozen) {
				return err
			}
			s.logger.Debug("custodian not provisioned for the day",
				zap.String("custodian_id", acc.CustodianID.String()), zap.Error(err))
		}
		acc.AttachDay(day.ID)
		if err := repos.Custodians().SaveWithLock(ctx, acc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) closeOne(ctx context.Context, t target, req TransitionRequest) (*accountingday.AccountingDay, error) {
	date := shared.DateOnly(req.Date)
	if req.Date.IsZero() {
		current, err := s.repos.Days().FindCurrentOpen(ctx, t.branchID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, accountingday.ErrNotOpen.WithMessage("No accounting day is open for the branch")
		}
		date = current.Date
	}

	release, err := s.lockDay(ctx, t.key(), date)
	if err != nil {
		return nil, err
	}
	defer release()

	var day *accountingday.AccountingDay
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		d, err := repos.Days().FindByBranchAndDate(ctx, t.branchID, date)
		if err != nil {
			return err
		}
		if d == nil {
			return accountingday.ErrNotOpen.WithMessage(
				fmt.Sprintf("No accounting day %s is open to close", date.Format(shared.DateLayout)))
		}
		if err := d.Close(req.UserID, req.Note); err != nil {
			return err
		}
		if err := repos.Days().SaveWithLock(ctx, d); err != nil {
			return err
		}
		if t.branchID != nil {
			histories, err := repos.Provisioning().FindByBranchAndDate(ctx, *t.branchID, date, cash.ProvisioningOpen)
			if err != nil {
				return err
			}
			for i := range histories {
				if err := histories[i].Freeze(); err != nil {
					return err
				}
				if err := repos.Provisioning().SaveWithLock(ctx, &histories[i]); err != nil {
					return err
				}
			}
		}
		day = d
		return nil
	})
	return day, err
}

func (s *Service) reopenOne(ctx context.Context, t target, date time.Time, req ReopenRequest) (*accountingday.AccountingDay, error) {
	release, err := s.lockDay(ctx, t.key(), date)
	if err != nil {
		return nil, err
	}
	defer release()

	var day *accountingday.AccountingDay
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		d, err := repos.Days().FindByBranchAndDate(ctx, t.branchID, date)
		if err != nil {
			return err
		}
		if d == nil {
			return accountingday.ErrDayNotFound.WithMessage(
				fmt.Sprintf("No accounting day %s to reopen", date.Format(shared.DateLayout)))
		}
		current, err := repos.Days().FindCurrentOpen(ctx, t.branchID)
		if err != nil {
			return err
		}
		if current != nil && current.ID != d.ID {
			return accountingday.ErrPreviousDayStillOpen.WithMessage(
				fmt.Sprintf("Accounting day %s is still open, close it first", current.Date.Format(shared.DateLayout)))
		}
		if err := d.Reopen(req.UserID, req.Note); err != nil {
			return err
		}
		if err := repos.Days().SaveWithLock(ctx, d); err != nil {
			return err
		}
		if t.branchID != nil {
			histories, err := repos.Provisioning().FindByBranchAndDate(ctx, *t.branchID, date, cash.ProvisioningFrozen)
			if err != nil {
				return err
			}
			for i := range histories {
				histories[i].Thaw()
				if err := repos.Provisioning().SaveWithLock(ctx, &histories[i]); err != nil {
					return err
				}
			}
		}
		day = d
		return nil
	})
	return day, err
}

func (s *Service) publish(ctx context.Context, day *accountingday.AccountingDay) {
	events := day.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish accounting day events", zap.Error(err))
	}
	day.ClearDomainEvents()
}
