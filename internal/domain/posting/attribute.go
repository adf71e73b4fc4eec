package posting

import (
	"fmt"
	"strings"

	"github.com/corebank/backend/internal/domain/shared"
)

// Attribute names the accounting role of a leg. The set is closed.
type Attribute string

const (
	PrincipalSavingAccount Attribute = "Principal_Saving_Account"
	PrincipalDeposit       Attribute = "Principal_Deposit"
	PrincipalTransfer      Attribute = "Principal_Transfer"
	PrincipalCashCeiling   Attribute = "Principal_Cash_Ceiling"

	BranchCommission     Attribute = "Branch_Commission"
	HeadOfficeCommission Attribute = "HeadOffice_Commission"
	PartnerOneCommission Attribute = "Partner_One_Commission"
	PartnerTwoCommission Attribute = "Partner_Two_Commission"

	SourceBranchCommission          Attribute = "Source_Branch_Commission"
	DestinationBranchCommission     Attribute = "Destination_Branch_Commission"
	InterBranchHeadOfficeCommission Attribute = "InterBranch_HeadOffice_Commission"
	InterBranchPartnerOneCommission Attribute = "InterBranch_Partner_One_Commission"
	InterBranchPartnerTwoCommission Attribute = "InterBranch_Partner_Two_Commission"
)

var attributes = map[Attribute]struct {
	principal   bool
	interBranch bool
}{
	PrincipalSavingAccount:          {principal: true},
	PrincipalDeposit:                {principal: true},
	PrincipalTransfer:               {principal: true},
	PrincipalCashCeiling:            {principal: true},
	BranchCommission:                {},
	HeadOfficeCommission:            {},
	PartnerOneCommission:            {},
	PartnerTwoCommission:            {},
	SourceBranchCommission:          {interBranch: true},
	DestinationBranchCommission:     {interBranch: true},
	InterBranchHeadOfficeCommission: {interBranch: true},
	InterBranchPartnerOneCommission: {interBranch: true},
	InterBranchPartnerTwoCommission: {interBranch: true},
}

var ErrUnknownAttribute = shared.NewKindError(shared.KindBadRequest, "UNKNOWN_EVENT_ATTRIBUTE", "Unknown event attribute")

// ParseAttribute converts a name into an Attribute
func ParseAttribute(s string) (Attribute, error) {
	a := Attribute(s)
	if _, ok := attributes[a]; !ok {
		return "", ErrUnknownAttribute.WithMessage(fmt.Sprintf("Unknown event attribute %q", s))
	}
	return a, nil
}

func (a Attribute) IsValid() bool {
	_, ok := attributes[a]
	return ok
}

func (a Attribute) IsPrincipal() bool {
	return attributes[a].principal
}

func (a Attribute) IsCommission() bool {
	return a.IsValid() && !a.IsPrincipal()
}

func (a Attribute) IsInterBranch() bool {
	return attributes[a].interBranch
}

// AnySubject matches every product or account in a rule table
const AnySubject = "*"

// EventKey identifies the accounts a leg posts to: a product or account
// identifier plus the attribute.
type EventKey struct {
	Subject   string
	Attribute Attribute
}

// Code renders the key as {subject}@{attribute}
func (k EventKey) Code() string {
	return k.Subject + "@" + string(k.Attribute)
}

func (k EventKey) String() string {
	return k.Code()
}

// ParseEventKey parses a {subject}@{attribute} code
func ParseEventKey(code string) (EventKey, error) {
	i := strings.LastIndex(code, "@")
	if i <= 0 || i == len(code)-1 {
		return EventKey{}, shared.NewDomainError("INVALID_EVENT_CODE", fmt.Sprintf("Event code %q must look like subject@attribute", code))
	}
	attr, err := ParseAttribute(code[i+1:])
	if err != nil {
		return EventKey{}, err
	}
	return EventKey{Subject: code[:i], Attribute: attr}, nil
}
