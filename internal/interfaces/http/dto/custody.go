package dto

import (
	"time"

	"github.com/corebank/backend/internal/application/accountingday"
	"github.com/corebank/backend/internal/application/cashops"
	"github.com/corebank/backend/internal/application/ceiling"
	postingapp "github.com/corebank/backend/internal/application/posting"
	dayDomain "github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	ceilingDomain "github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Accounting days
// =============================================================================

// DayTransitionRequest opens or closes a date for branches. Centralized
// targets every branch known to the directory.
type DayTransitionRequest struct {
	Date        string   `json:"date" binding:"required,datetime=2006-01-02"`
	BranchIDs   []string `json:"branch_ids" binding:"omitempty,dive,uuid"`
	Centralized bool     `json:"centralized"`
	Note        string   `json:"note" binding:"max=500"`
}

// DayReopenRequest reopens one closed day. No branch means the
// centralized record.
type DayReopenRequest struct {
	Date     string  `json:"date" binding:"required,datetime=2006-01-02"`
	BranchID *string `json:"branch_id" binding:"omitempty,uuid"`
	Note     string  `json:"note" binding:"max=500"`
}

// DayResponse is an accounting day
type DayResponse struct {
	ID            uuid.UUID  `json:"id"`
	Date          string     `json:"date"`
	BranchID      *uuid.UUID `json:"branch_id,omitempty"`
	IsCentralized bool       `json:"is_centralized"`
	Status        string     `json:"status"`
	OpenedAt      time.Time  `json:"opened_at"`
	OpenedBy      uuid.UUID  `json:"opened_by"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	ClosedBy      *uuid.UUID `json:"closed_by,omitempty"`
	ReopenedAt    *time.Time `json:"reopened_at,omitempty"`
	ReopenCount   int        `json:"reopen_count"`
	Note          string     `json:"note,omitempty"`
}

// DayBatchResponse is the per-branch breakdown of a day transition
type DayBatchResponse struct {
	shared.Outcome
	Days []DayResponse `json:"days"`
}

// ToDayResponse converts an accounting day
func ToDayResponse(d *dayDomain.AccountingDay) DayResponse {
	return DayResponse{
		ID:            d.ID,
		Date:          d.Date.Format(shared.DateLayout),
		BranchID:      d.BranchID,
		IsCentralized: d.IsCentralized,
		Status:        string(d.Status),
		OpenedAt:      d.OpenedAt,
		OpenedBy:      d.OpenedBy,
		ClosedAt:      d.ClosedAt,
		ClosedBy:      d.ClosedBy,
		ReopenedAt:    d.ReopenedAt,
		ReopenCount:   d.ReopenCount,
		Note:          d.Note,
	}
}

// ToDayResponses converts a slice of days
func ToDayResponses(days []dayDomain.AccountingDay) []DayResponse {
	out := make([]DayResponse, len(days))
	for i := range days {
		out[i] = ToDayResponse(&days[i])
	}
	return out
}

// ToDayBatchResponse converts a transition result
func ToDayBatchResponse(r *accountingday.DayBatchResult) DayBatchResponse {
	resp := DayBatchResponse{Outcome: r.Outcome, Days: make([]DayResponse, 0, len(r.Days))}
	for _, d := range r.Days {
		resp.Days = append(resp.Days, ToDayResponse(d))
	}
	return resp
}

// =============================================================================
// Tellers
// =============================================================================

// CreateTellerRequest registers a till
type CreateTellerRequest struct {
	BranchID  string `json:"branch_id" binding:"required,uuid"`
	Code      string `json:"code" binding:"required,max=30,code"`
	Name      string `json:"name" binding:"max=100"`
	IsPrimary bool   `json:"is_primary"`
}

// AssignTellerRequest puts a user on a till of the operator's branch.
// UserBranchID, the user's home branch, is required unless the operator
// assigns themselves, in which case it defaults to the operator's branch.
type AssignTellerRequest struct {
	UserID       string `json:"user_id" binding:"required,uuid"`
	UserBranchID string `json:"user_branch_id" binding:"omitempty,uuid"`
	TellerID     string `json:"teller_id" binding:"required,uuid"`
	IsPrimary    bool   `json:"is_primary"`
}

// TellerResponse is a till
type TellerResponse struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsPrimary bool      `json:"is_primary"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignmentResponse is a user to till assignment
type AssignmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BranchID   uuid.UUID  `json:"branch_id"`
	TellerID   uuid.UUID  `json:"teller_id"`
	IsPrimary  bool       `json:"is_primary"`
	Active     bool       `json:"active"`
	AssignedAt time.Time  `json:"assigned_at"`
	AssignedBy uuid.UUID  `json:"assigned_by"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// ToTellerResponse converts a till
func ToTellerResponse(t *teller.Teller) TellerResponse {
	return TellerResponse{
		ID:        t.ID,
		BranchID:  t.BranchID,
		Code:      t.Code,
		Name:      t.Name,
		IsPrimary: t.IsPrimary,
		Status:    string(t.Lifecycle),
		CreatedAt: t.CreatedAt,
	}
}

// ToTellerResponses converts a slice of tills
func ToTellerResponses(tellers []teller.Teller) []TellerResponse {
	out := make([]TellerResponse, len(tellers))
	for i := range tellers {
		out[i] = ToTellerResponse(&tellers[i])
	}
	return out
}

// ToAssignmentResponse converts an assignment
func ToAssignmentResponse(a *teller.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		BranchID:   a.BranchID,
		TellerID:   a.TellerID,
		IsPrimary:  a.IsPrimary,
		Active:     a.IsActive(),
		AssignedAt: a.AssignedAt,
		AssignedBy: a.AssignedBy,
		EndedAt:    a.EndedAt,
	}
}

// =============================================================================
// Cash ceiling requests
// =============================================================================

// CeilingCreateRequest asks to hand cash over to the next custodian up
type CeilingCreateRequest struct {
	Type          string               `json:"type" binding:"required,oneof=SUB_TO_PRIMARY PRIMARY_TO_VAULT"`
	Amount        decimal.Decimal      `json:"amount" binding:"gt=0"`
	Denominations cash.DenominationSet `json:"denominations" binding:"required,dive,keys,gt=0,endkeys,gte=0,lte=1000000000"`
	Note          string               `json:"note" binding:"max=500"`
}

// CeilingDecisionRequest carries an optional reason
type CeilingDecisionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CeilingListQuery filters ceiling requests of a branch
type CeilingListQuery struct {
	PageRequest
	BranchID string `form:"branch_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// CeilingResponse is a cash ceiling request
type CeilingResponse struct {
	ID                     uuid.UUID            `json:"id"`
	Reference              string               `json:"reference"`
	TellerID               uuid.UUID            `json:"teller_id"`
	BranchID               uuid.UUID            `json:"branch_id"`
	Type                   string               `json:"type"`
	Amount                 decimal.Decimal      `json:"amount"`
	Denominations          cash.DenominationSet `json:"denominations"`
	Status                 string               `json:"status"`
	Note                   string               `json:"note,omitempty"`
	RequestedBy            uuid.UUID            `json:"requested_by"`
	RequestedAt            time.Time            `json:"requested_at"`
	DestinationCustodianID *uuid.UUID           `json:"destination_custodian_id,omitempty"`
	ValidatedBy            *uuid.UUID           `json:"validated_by,omitempty"`
	ValidatedAt            *time.Time           `json:"validated_at,omitempty"`
	RejectedBy             *uuid.UUID           `json:"rejected_by,omitempty"`
	RejectedAt             *time.Time           `json:"rejected_at,omitempty"`
	RejectReason           string               `json:"reject_reason,omitempty"`
}

// ApprovalResponse is an approved request with its posting verdict
type ApprovalResponse struct {
	Request   CeilingResponse          `json:"request"`
	Operation *TellerOperationResponse `json:"operation,omitempty"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

// ToCeilingResponse converts a ceiling request
func ToCeilingResponse(r *ceilingDomain.Request) CeilingResponse {
	return CeilingResponse{
		ID:                     r.ID,
		Reference:              r.Reference,
		TellerID:               r.TellerID,
		BranchID:               r.BranchID,
		Type:                   string(r.Type),
		Amount:                 r.Amount,
		Denominations:          r.Denominations,
		Status:                 string(r.Status),
		Note:                   r.Note,
		RequestedBy:            r.RequestedBy,
		RequestedAt:            r.RequestedAt,
		DestinationCustodianID: r.DestinationCustodianID,
		ValidatedBy:            r.ValidatedBy,
		ValidatedAt:            r.ValidatedAt,
		RejectedBy:             r.RejectedBy,
		RejectedAt:             r.RejectedAt,
		RejectReason:           r.RejectReason,
	}
}

// ToCeilingResponses converts a slice of ceiling requests
func ToCeilingResponses(rs []ceilingDomain.Request) []CeilingResponse {
	out := make([]CeilingResponse, len(rs))
	for i := range rs {
		out[i] = ToCeilingResponse(&rs[i])
	}
	return out
}

// ToApprovalResponse converts an approval result
func ToApprovalResponse(r *ceiling.ApprovalResult) ApprovalResponse {
	resp := ApprovalResponse{Request: ToCeilingResponse(r.Request), Warnings: r.Warnings}
	if r.Operation != nil {
		op := ToTellerOperationResponse(r.Operation)
		resp.Operation = &op
	}
	return resp
}

// =============================================================================
// Cash operations
// =============================================================================

// CashOperationRequest is a withdrawal, deposit or transfer at the
// caller's till
type CashOperationRequest struct {
	CustomerID           string               `json:"customer_id" binding:"required,uuid"`
	AccountID            string               `json:"account_id" binding:"required,uuid"`
	DestinationAccountID *string              `json:"destination_account_id" binding:"omitempty,uuid"`
	ProductCode          string               `json:"product_code" binding:"required,max=50,code"`
	AccountType          string               `json:"account_type" binding:"max=50"`
	Amount               decimal.Decimal      `json:"amount" binding:"gt=0"`
	Fee                  decimal.Decimal      `json:"fee" binding:"gte=0"`
	FeeInclusive         bool                 `json:"fee_inclusive"`
	SchemeCode           string               `json:"scheme_code" binding:"omitempty,max=50,code"`
	Denominations        cash.DenominationSet `json:"denominations" binding:"omitempty,dive,keys,gt=0,endkeys,gte=0,lte=1000000000"`
}

// FundRequest brings outside cash into a vault or till
type FundRequest struct {
	Amount        decimal.Decimal      `json:"amount" binding:"gt=0"`
	Denominations cash.DenominationSet `json:"denominations" binding:"required,dive,keys,gt=0,endkeys,gte=0,lte=1000000000"`
}

// OpenVaultRequest registers a branch vault
type OpenVaultRequest struct {
	BranchID string `json:"branch_id" binding:"required,uuid"`
}

// TransactionResponse is a committed customer operation
type TransactionResponse struct {
	ID                   uuid.UUID            `json:"id"`
	Reference            string               `json:"reference"`
	Type                 string               `json:"type"`
	AccountID            uuid.UUID            `json:"account_id"`
	DestinationAccountID *uuid.UUID           `json:"destination_account_id,omitempty"`
	ProductCode          string               `json:"product_code"`
	AccountType          string               `json:"account_type,omitempty"`
	CustomerID           uuid.UUID            `json:"customer_id"`
	BranchID             uuid.UUID            `json:"branch_id"`
	TellerID             uuid.UUID            `json:"teller_id"`
	UserID               uuid.UUID            `json:"user_id"`
	AccountingDate       string               `json:"accounting_date"`
	Amount               decimal.Decimal      `json:"amount"`
	Fee                  decimal.Decimal      `json:"fee"`
	FeeInclusive         bool                 `json:"fee_inclusive"`
	InterBranch          bool                 `json:"inter_branch"`
	Denominations        cash.DenominationSet `json:"denominations,omitempty"`
	Warnings             []string             `json:"warnings,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

// OperationResponse is a transaction with its batch
type OperationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Batch       BatchResponse       `json:"batch"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// CustodianResponse is a custodian account
type CustodianResponse struct {
	ID              uuid.UUID       `json:"id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	Kind            string          `json:"kind"`
	CustodianID     uuid.UUID       `json:"custodian_id"`
	Balance         decimal.Decimal `json:"balance"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
}

// InventoryResponse is a provisioning history
type InventoryResponse struct {
	AccountingDate string               `json:"accounting_date"`
	Status         string               `json:"status"`
	OpeningCounts  cash.DenominationSet `json:"opening_counts"`
	Counts         cash.DenominationSet `json:"counts"`
	Total          decimal.Decimal      `json:"total"`
	CashInTotal    decimal.Decimal      `json:"cash_in_total"`
	CashOutTotal   decimal.Decimal      `json:"cash_out_total"`
}

// PositionResponse is a custodian's balance next to its inventory
type PositionResponse struct {
	Account    CustodianResponse  `json:"account"`
	Inventory  *InventoryResponse `json:"inventory,omitempty"`
	Reconciled bool               `json:"reconciled"`
}

// TellerOperationResponse is a vault or till movement
type TellerOperationResponse struct {
	ID                     uuid.UUID            `json:"id"`
	Reference              string               `json:"reference"`
	OperationType          string               `json:"operation_type"`
	BranchID               uuid.UUID            `json:"branch_id"`
	SourceCustodianID      uuid.UUID            `json:"source_custodian_id"`
	DestinationCustodianID uuid.UUID            `json:"destination_custodian_id"`
	Amount                 decimal.Decimal      `json:"amount"`
	Denominations          cash.DenominationSet `json:"denominations"`
	OperatorID             uuid.UUID            `json:"operator_id"`
	AccountingDate         string               `json:"accounting_date"`
}

// ToTransactionResponse converts a cash transaction
func ToTransactionResponse(t *cash.CashTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                   t.ID,
		Reference:            t.Reference,
		Type:                 string(t.Type),
		AccountID:            t.AccountID,
		DestinationAccountID: t.DestinationAccountID,
		ProductCode:          t.ProductCode,
		AccountType:          t.AccountType,
		CustomerID:           t.CustomerID,
		BranchID:             t.BranchID,
		TellerID:             t.TellerID,
		UserID:               t.UserID,
		AccountingDate:       t.AccountingDate.Format(shared.DateLayout),
		Amount:               t.Amount,
		Fee:                  t.Fee,
		FeeInclusive:         t.FeeInclusive,
		InterBranch:          t.InterBranch,
		Denominations:        t.Denominations,
		Warnings:             t.Warnings,
		CreatedAt:            t.CreatedAt,
	}
}

// ToOperationResponse converts an operation result
func ToOperationResponse(r *cashops.OperationResult) OperationResponse {
	return OperationResponse{
		Transaction: ToTransactionResponse(r.Transaction),
		Batch:       ToBatchResponse(r.Batch),
		Warnings:    r.Warnings,
	}
}

// ToCustodianResponse converts a custodian account
func ToCustodianResponse(a *cash.CustodianAccount) CustodianResponse {
	return CustodianResponse{
		ID:              a.ID,
		BranchID:        a.BranchID,
		Kind:            string(a.Kind),
		CustodianID:     a.CustodianID,
		Balance:         a.Balance,
		PreviousBalance: a.PreviousBalance,
	}
}

// ToPositionResponse converts a position
func ToPositionResponse(p *cashops.Position) PositionResponse {
	resp := PositionResponse{Account: ToCustodianResponse(p.Account), Reconciled: p.Reconciled}
	if h := p.Inventory; h != nil {
		resp.Inventory = &InventoryResponse{
			AccountingDate: h.AccountingDate.Format(shared.DateLayout),
			Status:         string(h.Status),
			OpeningCounts:  h.OpeningCounts,
			Counts:         h.Counts,
			Total:          h.Counts.Total(),
			CashInTotal:    h.CashInTotal,
			CashOutTotal:   h.CashOutTotal,
		}
	}
	return resp
}

// ToTellerOperationResponse converts a teller operation
func ToTellerOperationResponse(op *cash.TellerOperation) TellerOperationResponse {
	return TellerOperationResponse{
		ID:                     op.ID,
		Reference:              op.Reference,
		OperationType:          op.OperationType,
		BranchID:               op.BranchID,
		SourceCustodianID:      op.SourceCustodianID,
		DestinationCustodianID: op.DestinationCustodianID,
		Amount:                 op.Amount,
		Denominations:          op.Denominations,
		OperatorID:             op.OperatorID,
		AccountingDate:         op.AccountingDate.Format(shared.DateLayout),
	}
}

// =============================================================================
// Posting
// =============================================================================

// SharesDTO carries the five commission percentages
type SharesDTO struct {
	SourceBranch      decimal.Decimal `json:"source_branch" binding:"gte=0"`
	DestinationBranch decimal.Decimal `json:"destination_branch" binding:"gte=0"`
	HeadOffice        decimal.Decimal `json:"head_office" binding:"gte=0"`
	PartnerOne        decimal.Decimal `json:"partner_one" binding:"gte=0"`
	PartnerTwo        decimal.Decimal `json:"partner_two" binding:"gte=0"`
}

// ToShares converts the DTO into domain shares
func (s SharesDTO) ToShares() posting.Shares {
	return posting.Shares{
		SourceBranch:      s.SourceBranch,
		DestinationBranch: s.DestinationBranch,
		HeadOffice:        s.HeadOffice,
		PartnerOne:        s.PartnerOne,
		PartnerTwo:        s.PartnerTwo,
	}
}

// CreateSchemeRequest registers a commission scheme
type CreateSchemeRequest struct {
	Code   string    `json:"code" binding:"required,max=50,code"`
	Name   string    `json:"name" binding:"max=100"`
	Shares SharesDTO `json:"shares"`
}

// UpdateSharesRequest replaces the shares of a scheme
type UpdateSharesRequest struct {
	Shares SharesDTO `json:"shares"`
}

// SchemeResponse is a commission scheme
type SchemeResponse struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Shares SharesDTO `json:"shares"`
}

// SplitResponse is a fee divided by a scheme
type SplitResponse struct {
	SourceBranch      decimal.Decimal `json:"source_branch"`
	DestinationBranch decimal.Decimal `json:"destination_branch"`
	HeadOffice        decimal.Decimal `json:"head_office"`
	PartnerOne        decimal.Decimal `json:"partner_one"`
	PartnerTwo        decimal.Decimal `json:"partner_two"`
	Total             decimal.Decimal `json:"total"`
}

// LegResponse is one posting leg
type LegResponse struct {
	Code                    string          `json:"code"`
	Amount                  decimal.Decimal `json:"amount"`
	IsPrincipal             bool            `json:"is_principal"`
	IsInterBranchCommission bool            `json:"is_inter_branch_commission"`
	Narration               string          `json:"narration"`
}

// BatchResponse is a posting batch
type BatchResponse struct {
	Reference    string          `json:"reference"`
	StatedAmount decimal.Decimal `json:"stated_amount"`
	StatedFee    decimal.Decimal `json:"stated_fee"`
	FeeInclusive bool            `json:"fee_inclusive"`
	Legs         []LegResponse   `json:"legs"`
}

// JournalLineResponse is a leg resolved to a chart account
type JournalLineResponse struct {
	Account   string          `json:"account"`
	Code      string          `json:"code"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"`
}

// BatchReportResponse is a stored batch with its journal
type BatchReportResponse struct {
	Batch       BatchResponse         `json:"batch"`
	Lines       []JournalLineResponse `json:"lines"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	Balanced    bool                  `json:"balanced"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// ToSchemeResponse converts a scheme
func ToSchemeResponse(s *posting.CommissionScheme) SchemeResponse {
	return SchemeResponse{
		ID:   s.ID,
		Code: s.Code,
		Name: s.Name,
		Shares: SharesDTO{
			SourceBranch:      s.Shares.SourceBranch,
			DestinationBranch: s.Shares.DestinationBranch,
			HeadOffice:        s.Shares.HeadOffice,
			PartnerOne:        s.Shares.PartnerOne,
			PartnerTwo:        s.Shares.PartnerTwo,
		},
	}
}

// ToSchemeResponses converts a slice of schemes
func ToSchemeResponses(schemes []posting.CommissionScheme) []SchemeResponse {
	out := make([]SchemeResponse, len(schemes))
	for i := range schemes {
		out[i] = ToSchemeResponse(&schemes[i])
	}
	return out
}

// ToSplitResponse converts a split
func ToSplitResponse(s posting.Split) SplitResponse {
	return SplitResponse{
		SourceBranch:      s.SourceBranch,
		DestinationBranch: s.DestinationBranch,
		HeadOffice:        s.HeadOffice,
		PartnerOne:        s.PartnerOne,
		PartnerTwo:        s.PartnerTwo,
		Total:             s.Total(),
	}
}

// ToBatchResponse converts a batch
func ToBatchResponse(b *posting.Batch) BatchResponse {
	if b == nil {
		return BatchResponse{Legs: []LegResponse{}}
	}
	legs := make([]LegResponse, len(b.Legs))
	for i, l := range b.Legs {
		legs[i] = LegResponse{
			Code:                    l.Key.Code(),
			Amount:                  l.Amount,
			IsPrincipal:             l.IsPrincipal,
			IsInterBranchCommission: l.IsInterBranchCommission,
			Narration:               l.Narration,
		}
	}
	return BatchResponse{
		Reference:    b.Reference,
		StatedAmount: b.StatedAmount,
		StatedFee:    b.StatedFee,
		FeeInclusive: b.FeeInclusive,
		Legs:         legs,
	}
}

// ToBatchReportResponse converts a batch report
func ToBatchReportResponse(r *postingapp.BatchReport) BatchReportResponse {
	lines := make([]JournalLineResponse, len(r.Verification.Lines))
	for i, l := range r.Verification.Lines {
		lines[i] = JournalLineResponse{
			Account:   l.Account,
			Code:      l.Key.Code(),
			Debit:     l.Debit,
			Credit:    l.Credit,
			Narration: l.Narration,
		}
	}
	return BatchReportResponse{
		Batch:       ToBatchResponse(r.Batch),
		Lines:       lines,
		TotalDebit:  r.Verification.TotalDebit,
		TotalCredit: r.Verification.TotalCredit,
		Balanced:    r.Verification.Balanced(),
		Warnings:    r.Verification.Warnings,
	}
}
