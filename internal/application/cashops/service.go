// Package cashops runs customer cash operations at a till and the
// funding of vaults and tills. Every operation moves cash and writes its
// posting batch in one transaction; the batch is verified after commit.
package cashops

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Funding is the teller operation type of cash brought into a vault or till
const Funding = "FUNDING"

// Service handles withdrawals, deposits, transfers and funding
type Service struct {
	repos         custody.Repositories
	txScope       custody.TransactionScope
	locker        custody.KeyLocker
	customers     custody.CustomerDirectory
	denominations *cash.Ledger
	engine        *posting.Engine
	journal       *posting.Ledger
	events        shared.EventPublisher
	metrics       custody.Metrics
	logger        *zap.Logger
	defaultScheme string
}

// Config groups the collaborators of the service
type Config struct {
	Repositories  custody.Repositories
	TxScope       custody.TransactionScope
	Locker        custody.KeyLocker
	Customers     custody.CustomerDirectory
	Denominations *cash.Ledger
	Engine        *posting.Engine
	Journal       *posting.Ledger
	Events        shared.EventPublisher
	Metrics       custody.Metrics
	Logger        *zap.Logger
	// DefaultScheme is the commission scheme used when a request names none
	DefaultScheme string
}

// NewService creates a new cash operations service
func NewService(cfg Config) *Service {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = custody.NoopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:         cfg.Repositories,
		txScope:       cfg.TxScope,
		locker:        cfg.Locker,
		customers:     cfg.Customers,
		denominations: cfg.Denominations,
		engine:        cfg.Engine,
		journal:       cfg.Journal,
		events:        cfg.Events,
		metrics:       metrics,
		logger:        logger,
		defaultScheme: cfg.DefaultScheme,
	}
}

// OperationRequest is a customer operation at the caller's till
type OperationRequest struct {
	BranchID             uuid.UUID
	UserID               uuid.UUID
	CustomerID           uuid.UUID
	AccountID            uuid.UUID
	DestinationAccountID *uuid.UUID
	ProductCode          string
	AccountType          string
	Amount               decimal.Decimal
	Fee                  decimal.Decimal
	FeeInclusive         bool
	SchemeCode           string
	Denominations        cash.DenominationSet
}

// OperationResult is the committed transaction, its batch and the
// ledger's warnings on that batch
type OperationResult struct {
	Transaction *cash.CashTransaction
	Batch       *posting.Batch
	Warnings    []string
}

type operationKind struct {
	txType    cash.TransactionType
	direction posting.Direction
	name      string
	principal posting.Attribute
}

var (
	withdrawal = operationKind{cash.TransactionWithdrawal, posting.DirectionOut, "Withdrawal", posting.PrincipalSavingAccount}
	deposit    = operationKind{cash.TransactionDeposit, posting.DirectionIn, "Deposit", posting.PrincipalDeposit}
	transfer   = operationKind{cash.TransactionTransfer, posting.DirectionInternal, "Transfer", posting.PrincipalTransfer}
)

// Withdraw pays cash out of the caller's till
func (s *Service) Withdraw(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	return s.execute(ctx, withdrawal, req)
}

// Deposit takes cash into the caller's till
func (s *Service) Deposit(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	return s.execute(ctx, deposit, req)
}

// Transfer moves funds between two accounts. No cash changes hands, so
// the request carries no denominations.
func (s *Service) Transfer(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	if len(req.Denominations.Clone()) > 0 {
		return nil, cash.ErrDenominationMismatch.WithMessage("A transfer moves no cash and takes no denominations")
	}
	return s.execute(ctx, transfer, req)
}

func (s *Service) execute(ctx context.Context, kind operationKind, req OperationRequest) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cashops", string(kind.txType),
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrAccountID, req.AccountID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrFee, req.Fee.String(),
	)
	defer span.End()

	result, err := s.prepareAndRun(ctx, kind, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("cash operation failed",
			zap.String("type", string(kind.txType)),
			zap.String("account_id", req.AccountID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrReference, result.Transaction.Reference)
	return result, nil
}

func (s *Service) prepareAndRun(ctx context.Context, kind operationKind, req OperationRequest) (*OperationResult, error) {
	day, err := custody.CurrentDay(ctx, s.repos.Days(), req.BranchID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.repos.Assignments().FindActiveForUser(ctx, req.UserID, req.BranchID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, teller.ErrNoActiveTeller.WithMessage(fmt.Sprintf("User %s has no active teller in branch %s", req.UserID, req.BranchID))
	}
	customer, err := s.customers.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	split, err := s.split(ctx, req)
	if err != nil {
		return nil, err
	}
	if kind.txType.MovesCash() {
		if err := s.denominations.Validate(req.Amount, req.Denominations); err != nil {
			return nil, err
		}
	}

	tx, err := cash.NewCashTransaction(cash.NewCashTransactionInput{
		Type:                 kind.txType,
		AccountID:            req.AccountID,
		ProductCode:          req.ProductCode,
		AccountType:          req.AccountType,
		CustomerID:           customer.ID,
		CustomerBranchID:     customer.BranchID,
		DestinationAccountID: req.DestinationAccountID,
		BranchID:             req.BranchID,
		TellerID:             assignment.TellerID,
		UserID:               req.UserID,
		AccountingDate:       day.Date,
		Amount:               req.Amount,
		Fee:                  req.Fee,
		FeeInclusive:         req.FeeInclusive,
		Denominations:        req.Denominations,
	})
	if err != nil {
		return nil, err
	}

	if kind.txType.MovesCash() {
		release, err := s.locker.Acquire(ctx, custody.CustodianKey(assignment.TellerID))
		if err != nil {
			return nil, err
		}
		defer release()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var batch *posting.Batch
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		if kind.txType.MovesCash() {
			if err := s.moveTillCash(ctx, repos, tx); err != nil {
				return err
			}
			records := s.denominations.Materialize(tx.Denominations, tx.Reference)
			if err := repos.Denominations().SaveAll(ctx, records); err != nil {
				return fmt.Errorf("save denomination records: %w", err)
			}
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return fmt.Errorf("save cash transaction: %w", err)
		}

		b, err := s.engine.Build(posting.Operation{
			Reference:          tx.Reference,
			Direction:          kind.direction,
			Name:               kind.name,
			Subject:            tx.ProductCode,
			PrincipalAttribute: kind.principal,
			AccountType:        tx.AccountType,
			Amount:             tx.Amount,
			Fee:                tx.Fee,
			FeeInclusive:       tx.FeeInclusive,
			InterBranch:        tx.InterBranch,
			Commission:         split,
			BranchID:           tx.BranchID,
			AccountingDate:     tx.AccountingDate,
		})
		if err != nil {
			return err
		}
		if err := repos.Batches().SaveBatch(ctx, b); err != nil {
			return fmt.Errorf("save posting batch: %w", err)
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	warnings := custody.VerifyPosting(ctx, s.repos.Batches(), s.journal, batch, kind.name, s.metrics, s.logger)
	if len(warnings) > 0 {
		tx.AddWarnings(warnings...)
		if err := s.repos.Transactions().UpdateWarnings(ctx, tx.ID, tx.Warnings); err != nil {
			s.logger.Error("failed to store posting warnings",
				zap.String("reference", tx.Reference), zap.Error(err))
		}
	}
	s.metrics.RecordCashTransaction(ctx, string(tx.Type), tx.Amount)
	tx.Complete()
	s.publish(ctx, tx)

	s.logger.Info("cash operation completed",
		zap.String("reference", tx.Reference),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()),
		zap.String("fee", tx.Fee.String()),
		zap.Bool("inter_branch", tx.InterBranch),
	)
	return &OperationResult{Transaction: tx, Batch: batch, Warnings: warnings}, nil
}

// split divides the fee with the referenced scheme, or the default one
func (s *Service) split(ctx context.Context, req OperationRequest) (posting.Split, error) {
	if !req.Fee.IsPositive() {
		return posting.Split{}, nil
	}
	code := req.SchemeCode
	if code == "" {
		code = s.defaultScheme
	}
	if code == "" {
		return posting.Split{}, posting.ErrSchemeNotFound.WithMessage("A fee was charged but no commission scheme is configured")
	}
	scheme, err := s.repos.Schemes().FindByCode(ctx, code)
	if err != nil {
		return posting.Split{}, err
	}
	return scheme.Split(req.Fee), nil
}

// moveTillCash applies the operation to the till's balance and inventory.
// The till must reconcile with its inventory first.
func (s *Service) moveTillCash(ctx context.Context, repos custody.Repositories, tx *cash.CashTransaction) error {
	acc, err := repos.Custodians().FindByCustodian(ctx, tx.TellerID)
	if err != nil {
		return err
	}

	var (
		hist    *cash.ProvisioningHistory
		created bool
	)
	if tx.Type == cash.TransactionWithdrawal {
		hist, err = custody.CurrentProvisioning(ctx, repos.Provisioning(), tx.TellerID, tx.AccountingDate)
	} else {
		hist, created, err = custody.ReceivingProvisioning(ctx, repos.Provisioning(), acc, tx.AccountingDate)
	}
	if err != nil {
		return err
	}
	if err := acc.VerifyIntegrity(hist); err != nil {
		return err
	}

	switch tx.Type {
	case cash.TransactionWithdrawal:
		if err := acc.Debit(tx.Amount); err != nil {
			return err
		}
		if err := hist.CashOut(tx.Amount, tx.Denominations); err != nil {
			return err
		}
	case cash.TransactionDeposit:
		if err := acc.Credit(tx.Amount); err != nil {
			return err
		}
		if err := hist.CashIn(tx.Amount, tx.Denominations); err != nil {
			return err
		}
	}

	if err := repos.Custodians().SaveWithLock(ctx, acc); err != nil {
		return err
	}
	if created {
		return repos.Provisioning().Save(ctx, hist)
	}
	return repos.Provisioning().SaveWithLock(ctx, hist)
}

func (s *Service) publish(ctx context.Context, tx *cash.CashTransaction) {
	events := tx.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish cash transaction events", zap.Error(err))
	}
	tx.ClearDomainEvents()
}

// GetTransaction returns a committed operation by reference
func (s *Service) GetTransaction(ctx context.Context, reference string) (*cash.CashTransaction, error) {
	return s.repos.Transactions().FindByReference(ctx, reference)
}

// Position is a custodian's balance next to its inventory
type Position struct {
	Account    *cash.CustodianAccount
	Inventory  *cash.ProvisioningHistory
	Reconciled bool
}

// GetPosition returns the cash a custodian holds and whether its balance
// reconciles with the denominations at hand
func (s *Service) GetPosition(ctx context.Context, custodianID uuid.UUID) (*Position, error) {
	acc, err := s.repos.Custodians().FindByCustodian(ctx, custodianID)
	if err != nil {
		return nil, err
	}
	hist, err := s.repos.Provisioning().FindLastUpdated(ctx, custodianID)
	if err != nil {
		return nil, err
	}
	return &Position{
		Account:    acc,
		Inventory:  hist,
		Reconciled: hist != nil && acc.VerifyIntegrity(hist) == nil,
	}, nil
}

// OpenVault registers the vault of a branch with an empty balance
func (s *Service) OpenVault(ctx context.Context, branchID uuid.UUID) (*cash.CustodianAccount, error) {
	accounts, err := s.repos.Custodians().FindByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Kind == cash.CustodianVault {
			return nil, shared.ErrAlreadyExists.WithMessage(fmt.Sprintf("Branch %s already has a vault", branchID))
		}
	}
	vault, err := cash.NewCustodianAccount(branchID, cash.CustodianVault, uuid.New(), decimal.Zero)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Custodians().Save(ctx, vault); err != nil {
		return nil, fmt.Errorf("save vault: %w", err)
	}
	s.logger.Info("vault opened",
		zap.String("branch_id", branchID.String()),
		zap.String("custodian_id", vault.CustodianID.String()),
	)
	return vault, nil
}

// FundRequest brings cash from outside the branch into a custodian
type FundRequest struct {
	CustodianID   uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Denominations cash.DenominationSet
}

// Fund credits a vault or till with cash delivered to the branch. The
// accounting day of the custodian's branch must be open.
func (s *Service) Fund(ctx context.Context, req FundRequest) (*cash.TellerOperation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cashops", "fund",
		telemetry.SpanAttrAccountID, req.CustodianID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	if err := s.denominations.Validate(req.Amount, req.Denominations); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	acc, err := s.repos.Custodians().FindByCustodian(ctx, req.CustodianID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	day, err := custody.CurrentDay(ctx, s.repos.Days(), acc.BranchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, custody.CustodianKey(req.CustodianID))
	if err != nil {
		return nil, err
	}
	defer release()

	reference := cash.NewReference(Funding, uuid.New(), day.Date)
	var op *cash.TellerOperation
	err = s.txScope.Execute(ctx, func(repos custody.Repositories) error {
		acc, err := repos.Custodians().FindByCustodian(ctx, req.CustodianID)
		if err != nil {
			return err
		}
		hist, created, err := custody.ReceivingProvisioning(ctx, repos.Provisioning(), acc, day.Date)
		if err != nil {
			return err
		}
		if err := acc.Credit(req.Amount); err != nil {
			return err
		}
		if err := hist.CashIn(req.Amount, req.Denominations); err != nil {
			return err
		}
		if err := repos.Custodians().SaveWithLock(ctx, acc); err != nil {
			return err
		}
		if created {
			err = repos.Provisioning().Save(ctx, hist)
		} else {
			err = repos.Provisioning().SaveWithLock(ctx, hist)
		}
		if err != nil {
			return err
		}

		op = cash.NewTellerOperation(reference, Funding, acc.BranchID, uuid.Nil, acc.CustodianID,
			req.Amount, req.Denominations, req.UserID, day.Date)
		if err := repos.TellerOperations().Save(ctx, op); err != nil {
			return fmt.Errorf("save teller operation: %w", err)
		}
		return repos.Denominations().SaveAll(ctx, s.denominations.Materialize(req.Denominations, reference))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("custodian funded",
		zap.String("reference", reference),
		zap.String("custodian_id", req.CustodianID.String()),
		zap.String("amount", req.Amount.String()),
		zap.Time("accounting_date", day.Date),
	)
	return op, nil
}

// SuggestDenominations proposes a breakdown of amount for system movements
func (s *Service) SuggestDenominations(amount decimal.Decimal) (cash.DenominationSet, error) {
	return s.denominations.Decompose(amount)
}
