// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel (id, timestamps, optimistic version)
//   - accounting_day.go: accounting day lifecycle rows
//   - teller.go: tills and daily teller assignments
//   - cash.go: custodian accounts, provisioning histories, cash transactions,
//     denomination records and teller operations
//   - ceiling.go: cash ceiling requests
//   - posting.go: posting batches, legs and commission schemes
//   - directory.go: branch and customer read models
package models

// All returns every model, in dependency order, for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&BranchModel{},
		&CustomerModel{},
		&AccountingDayModel{},
		&TellerModel{},
		&TellerAssignmentModel{},
		&CustodianAccountModel{},
		&ProvisioningHistoryModel{},
		&CashTransactionModel{},
		&DenominationRecordModel{},
		&TellerOperationModel{},
		&CashCeilingRequestModel{},
		&PostingBatchModel{},
		&PostingLegModel{},
		&CommissionSchemeModel{},
	}
}
