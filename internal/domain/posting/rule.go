package posting

import (
	"fmt"
)

// AccountRule maps an event key to chart-of-account codes. Either side
// may be empty for one-sided legs.
type AccountRule struct {
	Debit  string
	Credit string
}

// RuleTable resolves event keys to account rules. An exact subject match
// wins over an AnySubject entry for the same attribute.
type RuleTable struct {
	rules map[EventKey]AccountRule
}

// NewRuleTable builds a table from code → rule entries
func NewRuleTable(entries map[string]AccountRule) (*RuleTable, error) {
	t := &RuleTable{rules: make(map[EventKey]AccountRule, len(entries))}
	for code, rule := range entries {
		key, err := ParseEventKey(code)
		if err != nil {
			return nil, err
		}
		if rule.Debit == "" && rule.Credit == "" {
			return nil, fmt.Errorf("rule %s has neither debit nor credit account", code)
		}
		t.rules[key] = rule
	}
	return t, nil
}

// Resolve returns the rule for key
func (t *RuleTable) Resolve(key EventKey) (AccountRule, bool) {
	if r, ok := t.rules[key]; ok {
		return r, true
	}
	r, ok := t.rules[EventKey{Subject: AnySubject, Attribute: key.Attribute}]
	return r, ok
}

// Len returns the number of entries
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// DefaultRules is a minimal balanced chart used when none is configured
func DefaultRules() map[string]AccountRule {
	const (
		customerDeposits = "2101"
		cashOnHand       = "1011"
		transitAccount   = "1091"
		feeClearing      = "2190"
	)
	return map[string]AccountRule{
		"*@" + string(PrincipalSavingAccount):          {Debit: customerDeposits, Credit: cashOnHand},
		"*@" + string(PrincipalDeposit):                {Debit: cashOnHand, Credit: customerDeposits},
		"*@" + string(PrincipalTransfer):               {Debit: customerDeposits, Credit: customerDeposits},
		"*@" + string(PrincipalCashCeiling):            {Debit: cashOnHand, Credit: transitAccount},
		"*@" + string(BranchCommission):                {Debit: feeClearing, Credit: "4101"},
		"*@" + string(HeadOfficeCommission):            {Debit: feeClearing, Credit: "4102"},
		"*@" + string(PartnerOneCommission):            {Debit: feeClearing, Credit: "2301"},
		"*@" + string(PartnerTwoCommission):            {Debit: feeClearing, Credit: "2302"},
		"*@" + string(SourceBranchCommission):          {Debit: feeClearing, Credit: "4111"},
		"*@" + string(DestinationBranchCommission):     {Debit: feeClearing, Credit: "4112"},
		"*@" + string(InterBranchHeadOfficeCommission): {Debit: feeClearing, Credit: "4113"},
		"*@" + string(InterBranchPartnerOneCommission): {Debit: feeClearing, Credit: "2311"},
		"*@" + string(InterBranchPartnerTwoCommission): {Debit: feeClearing, Credit: "2312"},
	}
}
