package persistence

import (
	"context"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/teller"
	"gorm.io/gorm"
)

// gormRepositories builds every repository over one connection, which is
// either the root pool or an open transaction.
type gormRepositories struct {
	db *gorm.DB
}

// NewRepositories returns the repository bundle over the root connection
func NewRepositories(db *gorm.DB) custody.Repositories {
	return &gormRepositories{db: db}
}

func (r *gormRepositories) Days() accountingday.Repository {
	return NewGormAccountingDayRepository(r.db)
}

func (r *gormRepositories) Tellers() teller.TellerRepository {
	return NewGormTellerRepository(r.db)
}

func (r *gormRepositories) Assignments() teller.AssignmentRepository {
	return NewGormAssignmentRepository(r.db)
}

func (r *gormRepositories) Custodians() cash.CustodianAccountRepository {
	return NewGormCustodianAccountRepository(r.db)
}

func (r *gormRepositories) Provisioning() cash.ProvisioningHistoryRepository {
	return NewGormProvisioningHistoryRepository(r.db)
}

func (r *gormRepositories) Transactions() cash.CashTransactionRepository {
	return NewGormCashTransactionRepository(r.db)
}

func (r *gormRepositories) Denominations() cash.DenominationRecordRepository {
	return NewGormDenominationRecordRepository(r.db)
}

func (r *gormRepositories) TellerOperations() cash.TellerOperationRepository {
	return NewGormTellerOperationRepository(r.db)
}

func (r *gormRepositories) Ceilings() ceiling.Repository {
	return NewGormCeilingRepository(r.db)
}

func (r *gormRepositories) Batches() posting.BatchRepository {
	return NewGormBatchRepository(r.db)
}

func (r *gormRepositories) Schemes() posting.SchemeRepository {
	return NewGormSchemeRepository(r.db)
}

// GormTransactionScope implements custody.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. Any error returned by
// fn rolls back every write made through the scoped repositories.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos custody.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}

var (
	_ custody.Repositories     = (*gormRepositories)(nil)
	_ custody.TransactionScope = (*GormTransactionScope)(nil)
)
