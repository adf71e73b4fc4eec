// Package ceiling runs the cash ceiling workflow: a sub-teller hands cash
// to the primary teller, or the primary teller hands it to the vault,
// once a supervisor approves the request.
package ceiling

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OperationName labels ceiling postings in narrations
const OperationName = "CashCeiling"

// Service handles cash ceiling requests
type Service struct {
	repos         custody.Repositories
	txScope       custody.TransactionScope
	locker        custody.KeyLocker
	denominations *cash.Ledger
	engine        *posting.Engine
	journal       *posting.Ledger
	events        shared.EventPublisher
	metrics       custody.Metrics
	logger        *zap.Logger
}

// NewService creates a new cash ceiling service
func NewService(
	repos custody.Repositories,
	txScope custody.TransactionScope,
	locker custody.KeyLocker,
	denominations *cash.Ledger,
	engine *posting.Engine,
	journal *posting.Ledger,
	events shared.EventPublisher,
	metrics custody.Metrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = custody.NoopMetrics{}
	}
	return &Service{
		repos:         repos,
		txScope:       txScope,
		locker:        locker,
		denominations: denominations,
		engine:        engine,
		journal:       journal,
		events:        events,
		metrics:       metrics,
		logger:        logger,
	}
}

// CreateRequest asks to hand cash over in the given direction
type CreateRequest struct {
	BranchID      uuid.UUID
	UserID        uuid.UUID
	Type          ceiling.RequestType
	Amount        decimal.Decimal
	Denominations cash.DenominationSet
	Note          string
}

// DecisionRequest approves or rejects a pending request
type DecisionRequest struct {
	RequestID uuid.UUID
	UserID    uuid.UUID
	Reason    string
}

// ApprovalResult is the approved request plus its posting verdict
type ApprovalResult struct {
	Request   *ceiling.Request
	Operation *cash.TellerOperation
	Warnings  []string
}

// Create files a pending request for the caller's till. At most one
// request per till and direction may be pending.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ceiling.Request, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ceiling", "create",
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrRequestType, string(req.Type),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST_TYPE", "Request type must be SUB_TO_PRIMARY or PRIMARY_TO_VAULT")
	}
	source, err := s.sourceAssignment(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrTellerID, source.TellerID.String())

	release, err := s.locker.Acquire(ctx, custody.CeilingKey(source.TellerID, string(req.Type)))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	pending, err := s.repos.Ceilings().FindPending(ctx, source.TellerID, req.Type)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		err := ceiling.ErrDuplicatePendingRequest.WithMessage(fmt.Sprintf(
			"Request %s is still pending for this teller", pending.Reference))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.denominations.Validate(req.Amount, req.Denominations); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	r, err := ceiling.NewRequest(source.TellerID, req.BranchID, req.Type, req.Amount, req.Denominations, req.UserID, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Ceilings().Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save ceiling request: %w", err)
	}

	s.logger.Info("cash ceiling request created",
		zap.String("reference", r.Reference),
		zap.String("teller_id", r.TellerID.String()),
		zap.String("type", string(r.Type)),
		zap.String("amount", r.Amount.String()),
	)
	return r, nil
}

// sourceAssignment finds the till the cash leaves: the caller's sub-teller
// for SUB_TO_PRIMARY, the branch's primary teller for PRIMARY_TO_VAULT.
func (s *Service) sourceAssignment(ctx context.Context, req CreateRequest) (*teller.Assignment, error) {
	var (
		a   *teller.Assignment
		err error
	)
	switch req.Type {
	case ceiling.SubToPrimary:
		a, err = s.repos.Assignments().FindActiveSub(ctx, req.UserID, req.BranchID)
	case ceiling.PrimaryToVault:
		a, err = s.repos.Assignments().FindActivePrimary(ctx, req.BranchID)
	}
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, teller.ErrNoActiveTeller.WithMessage(fmt.Sprintf(
			"No active teller can send a %s request in branch %s", req.Type, req.BranchID))
	}
	return a, nil
}

// Approve moves the cash from the source till to its destination and
// posts the movement. The transfer, the audit record and the posting
// batch commit together or not at all.
func (s *Service) Approve(ctx context.Context, req DecisionRequest) (*ApprovalResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ceiling", "approve",
		telemetry.SpanAttrRequestID, req.RequestID.String(),
		telemetry.SpanAttrUserID, req.UserID.String(),
	)
	defer span.End()

	r, err := s.repos.Ceilings().FindByID(ctx, req.RequestID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := r.CheckPending(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	destination, err := s.destination(ctx, r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	release, err := custody.AcquireAll(ctx, s.locker,
		custody.CeilingRequestKey(r.ID),
		custody.CustodianKey(r.TellerID),
		custody.CustodianKey(destination),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	day, err := custody.CurrentDay(ctx, s.repos.Days(), r.BranchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		approved *ceiling.Request
		op       *cash.TellerOperation
		batch    *posting.Batch
	)
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		current, err := repos.Ceilings().FindByID(ctx, r.ID)
		if err != nil {
			return err
		}
		if err := current.CheckPending(); err != nil {
			return err
		}
		if err := s.transfer(ctx, repos, current, destination, day); err != nil {
			return err
		}
		if err := current.Approve(req.UserID, destination); err != nil {
			return err
		}
		if err := repos.Ceilings().SaveWithLock(ctx, current); err != nil {
			return err
		}

		op = cash.NewTellerOperation(current.Reference, string(current.Type), current.BranchID,
			current.TellerID, destination, current.Amount, current.Denominations, req.UserID, day.Date)
		if err := repos.TellerOperations().Save(ctx, op); err != nil {
			return fmt.Errorf("save teller operation: %w", err)
		}
		records := s.denominations.Materialize(current.Denominations, current.Reference)
		if err := repos.Denominations().SaveAll(ctx, records); err != nil {
			return fmt.Errorf("save denomination records: %w", err)
		}

		batch, err = s.engine.Build(posting.Operation{
			Reference:          current.Reference,
			Direction:          posting.DirectionInternal,
			Name:               OperationName,
			Subject:            string(current.Type),
			PrincipalAttribute: posting.PrincipalCashCeiling,
			AccountType:        string(current.Type),
			Amount:             current.Amount,
			Fee:                decimal.Zero,
			BranchID:           current.BranchID,
			AccountingDate:     day.Date,
		})
		if err != nil {
			return err
		}
		if err := repos.Batches().SaveBatch(ctx, batch); err != nil {
			return fmt.Errorf("save posting batch: %w", err)
		}
		approved = current
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("cash ceiling approval failed",
			zap.String("request_id", r.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	warnings := custody.VerifyPosting(ctx, s.repos.Batches(), s.journal, batch, OperationName, s.metrics, s.logger)
	s.metrics.RecordCeilingDecision(ctx, string(approved.Type), string(approved.Status))
	s.publish(ctx, approved)

	s.logger.Info("cash ceiling request approved",
		zap.String("reference", approved.Reference),
		zap.String("source", approved.TellerID.String()),
		zap.String("destination", destination.String()),
		zap.String("amount", approved.Amount.String()),
	)
	return &ApprovalResult{Request: approved, Operation: op, Warnings: warnings}, nil
}

// destination resolves who receives the cash: the teller of the active
// primary assignment, or the branch vault.
func (s *Service) destination(ctx context.Context, r *ceiling.Request) (uuid.UUID, error) {
	switch r.Type {
	case ceiling.SubToPrimary:
		primary, err := s.repos.Assignments().FindActivePrimary(ctx, r.BranchID)
		if err != nil {
			return uuid.Nil, err
		}
		if primary == nil {
			return uuid.Nil, ceiling.ErrNoDestination.WithMessage("Branch has no active primary teller")
		}
		return primary.TellerID, nil
	case ceiling.PrimaryToVault:
		accounts, err := s.repos.Custodians().FindByBranch(ctx, r.BranchID)
		if err != nil {
			return uuid.Nil, err
		}
		for _, a := range accounts {
			if a.Kind == cash.CustodianVault {
				return a.CustodianID, nil
			}
		}
		return uuid.Nil, ceiling.ErrNoDestination.WithMessage("Branch has no vault")
	}
	return uuid.Nil, shared.NewDomainError("INVALID_REQUEST_TYPE", fmt.Sprintf("Unknown request type %q", r.Type))
}

// transfer moves the request's cash between the two custodians. The
// source must reconcile with its inventory before anything is touched.
func (s *Service) transfer(ctx context.Context, repos custody.Repositories, r *ceiling.Request, destination uuid.UUID, day *accountingday.AccountingDay) error {
	srcAcc, err := repos.Custodians().FindByCustodian(ctx, r.TellerID)
	if err != nil {
		return err
	}
	srcHist, err := custody.CurrentProvisioning(ctx, repos.Provisioning(), r.TellerID, day.Date)
	if err != nil {
		return err
	}
	if err := srcAcc.VerifyIntegrity(srcHist); err != nil {
		return err
	}
	if err := srcAcc.Debit(r.Amount); err != nil {
		return err
	}
	if err := srcHist.CashOut(r.Amount, r.Denominations); err != nil {
		return err
	}

	dstAcc, err := repos.Custodians().FindByCustodian(ctx, destination)
	if err != nil {
		return err
	}
	dstHist, created, err := custody.ReceivingProvisioning(ctx, repos.Provisioning(), dstAcc, day.Date)
	if err != nil {
		return err
	}
	if err := dstAcc.Credit(r.Amount); err != nil {
		return err
	}
	if err := dstHist.CashIn(r.Amount, r.Denominations); err != nil {
		return err
	}

	if err := repos.Custodians().SaveWithLock(ctx, srcAcc); err != nil {
		return err
	}
	if err := repos.Provisioning().SaveWithLock(ctx, srcHist); err != nil {
		return err
	}
	if err := repos.Custodians().SaveWithLock(ctx, dstAcc); err != nil {
		return err
	}
	if created {
		return repos.Provisioning().Save(ctx, dstHist)
	}
	return repos.Provisioning().SaveWithLock(ctx, dstHist)
}

// Reject closes a pending request without moving cash
func (s *Service) Reject(ctx context.Context, req DecisionRequest) (*ceiling.Request, error) {
	release, err := s.locker.Acquire(ctx, custody.CeilingRequestKey(req.RequestID))
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := s.repos.Ceilings().FindByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := r.Reject(req.UserID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.repos.Ceilings().SaveWithLock(ctx, r); err != nil {
		return nil, err
	}

	s.metrics.RecordCeilingDecision(ctx, string(r.Type), string(r.Status))
	s.logger.Info("cash ceiling request rejected",
		zap.String("reference", r.Reference),
		zap.String("reason", req.Reason),
	)
	return r, nil
}

// Get returns one request
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ceiling.Request, error) {
	return s.repos.Ceilings().FindByID(ctx, id)
}

// List returns a page of the branch's requests. An empty status lists all.
func (s *Service) List(ctx context.Context, branchID uuid.UUID, status ceiling.Status, filter shared.Filter) ([]ceiling.Request, int64, error) {
	return s.repos.Ceilings().List(ctx, branchID, status, filter)
}

func (s *Service) publish(ctx context.Context, r *ceiling.Request) {
	events := r.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish ceiling events", zap.Error(err))
	}
	r.ClearDomainEvents()
}
