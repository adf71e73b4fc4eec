// Package teller manages tills and the daily assignment of users to them.
package teller

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles tills and teller assignments
type Service struct {
	repos   custody.Repositories
	txScope custody.TransactionScope
	locker  custody.KeyLocker
	logger  *zap.Logger
}

// NewService creates a new teller service
func NewService(repos custody.Repositories, txScope custody.TransactionScope, locker custody.KeyLocker, logger *zap.Logger) *Service {
	return &Service{
		repos:   repos,
		txScope: txScope,
		locker:  locker,
		logger:  logger,
	}
}

// CreateTellerRequest describes a new till
type CreateTellerRequest struct {
	BranchID  uuid.UUID
	Code      string
	Name      string
	IsPrimary bool
}

// CreateTeller registers a till together with its empty custodian account
func (s *Service) CreateTeller(ctx context.Context, req CreateTellerRequest) (*teller.Teller, error) {
	t, err := teller.NewTeller(req.BranchID, req.Code, req.Name, req.IsPrimary)
	if err != nil {
		return nil, err
	}
	kind := cash.CustodianSubTeller
	if t.IsPrimary {
		kind = cash.CustodianPrimaryTeller
	}
	account, err := cash.NewCustodianAccount(t.BranchID, kind, t.ID, decimal.Zero)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		if err := repos.Tellers().Save(ctx, t); err != nil {
			return fmt.Errorf("save teller: %w", err)
		}
		if err := repos.Custodians().Save(ctx, account); err != nil {
			return fmt.Errorf("save custodian account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("teller created",
		zap.String("teller_id", t.ID.String()),
		zap.String("branch_id", t.BranchID.String()),
		zap.String("code", t.Code),
		zap.Bool("is_primary", t.IsPrimary),
	)
	return t, nil
}

// ListTellers returns the live tills of a branch
func (s *Service) ListTellers(ctx context.Context, branchID uuid.UUID) ([]teller.Teller, error) {
	return s.repos.Tellers().FindByBranch(ctx, branchID)
}

// Assign binds a user to a till. The checks run in a fixed order against
// the live assignments of the branch, serialized per branch.
func (s *Service) Assign(ctx context.Context, req teller.AssignRequest) (*teller.Assignment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "teller", "assign",
		telemetry.SpanAttrTellerID, req.TellerID.String(),
		telemetry.SpanAttrUserID, req.UserID.String(),
	)
	defer span.End()

	release, err := s.locker.Acquire(ctx, custody.AssignmentKey(req.BranchID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	var assignment *teller.Assignment
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		t, err := repos.Tellers().FindByID(ctx, req.TellerID)
		if err != nil {
			return err
		}
		state, err := activeState(ctx, repos.Assignments(), req)
		if err != nil {
			return err
		}
		a, err := teller.Assign(req, t, state)
		if err != nil {
			return err
		}
		if err := repos.Assignments().Save(ctx, a); err != nil {
			return fmt.Errorf("save teller assignment: %w", err)
		}
		assignment = a
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("teller assigned",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("teller_id", assignment.TellerID.String()),
		zap.String("user_id", assignment.UserID.String()),
		zap.Bool("is_primary", assignment.IsPrimary),
	)
	return assignment, nil
}

func activeState(ctx context.Context, repo teller.AssignmentRepository, req teller.AssignRequest) (teller.ActiveState, error) {
	var (
		state teller.ActiveState
		err   error
	)
	if state.UserOnTeller, err = repo.FindActiveByUserAndTeller(ctx, req.UserID, req.TellerID); err != nil {
		return state, err
	}
	if state.BranchPrimary, err = repo.FindActivePrimary(ctx, req.BranchID); err != nil {
		return state, err
	}
	if state.TellerHolder, err = repo.FindActiveByTeller(ctx, req.TellerID); err != nil {
		return state, err
	}
	if state.UserSub, err = repo.FindActiveSub(ctx, req.UserID, req.BranchID); err != nil {
		return state, err
	}
	return state, nil
}

// Unassign ends an assignment. The till's provisioning is left as is.
func (s *Service) Unassign(ctx context.Context, assignmentID, by uuid.UUID) error {
	current, err := s.repos.Assignments().FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	release, err := s.locker.Acquire(ctx, custody.AssignmentKey(current.BranchID))
	if err != nil {
		return err
	}
	defer release()

	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		a, err := repos.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if err := a.End(by); err != nil {
			return err
		}
		return repos.Assignments().Save(ctx, a)
	})
	if err != nil {
		return err
	}
	s.logger.Info("teller unassigned",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("ended_by", by.String()),
	)
	return nil
}

// GetActiveForUser returns the till the user works on in the branch,
// preferring a sub-teller over the primary one.
func (s *Service) GetActiveForUser(ctx context.Context, userID, branchID uuid.UUID) (*teller.Assignment, error) {
	a, err := s.repos.Assignments().FindActiveForUser(ctx, userID, branchID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, teller.ErrNoActiveTeller.WithMessage(fmt.Sprintf("User %s has no active teller in branch %s", userID, branchID))
	}
	return a, nil
}

// GetPrimaryForBranch returns the branch's active primary assignment
func (s *Service) GetPrimaryForBranch(ctx context.Context, branchID uuid.UUID) (*teller.Assignment, error) {
	a, err := s.repos.Assignments().FindActivePrimary(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, teller.ErrNoActiveTeller.WithMessage(fmt.Sprintf("Branch %s has no active primary teller", branchID))
	}
	return a, nil
}
