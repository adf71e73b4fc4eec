package posting

import (
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidShareConfiguration = shared.NewKindError(shared.KindBadRequest, "INVALID_SHARE_CONFIGURATION", "Commission shares must sum to exactly 100")
	ErrSchemeNotFound            = shared.NewKindError(shared.KindNotFound, "COMMISSION_SCHEME_NOT_FOUND", "Commission scheme not found")
	ErrSchemeExists              = shared.NewKindError(shared.KindConflict, "COMMISSION_SCHEME_EXISTS", "Commission scheme code already in use")
	ErrBatchNotFound             = shared.NewKindError(shared.KindNotFound, "POSTING_BATCH_NOT_FOUND", "Posting batch not found")
)

var hundred = decimal.NewFromInt(100)

// Shares are percentages of a fee. They must sum to exactly 100.
type Shares struct {
	SourceBranch      decimal.Decimal
	DestinationBranch decimal.Decimal
	HeadOffice        decimal.Decimal
	PartnerOne        decimal.Decimal
	PartnerTwo        decimal.Decimal
}

// Sum returns the total percentage
func (s Shares) Sum() decimal.Decimal {
	return s.SourceBranch.Add(s.DestinationBranch).Add(s.HeadOffice).Add(s.PartnerOne).Add(s.PartnerTwo)
}

// Validate rejects negative shares and sums other than 100
func (s Shares) Validate() error {
	for _, v := range []decimal.Decimal{s.SourceBranch, s.DestinationBranch, s.HeadOffice, s.PartnerOne, s.PartnerTwo} {
		if v.IsNegative() {
			return ErrInvalidShareConfiguration.WithMessage("Commission shares cannot be negative")
		}
	}
	if sum := s.Sum(); !sum.Equal(hundred) {
		return ErrInvalidShareConfiguration.WithMessage(fmt.Sprintf("Commission shares sum to %s%%, expected 100%%", sum.String()))
	}
	return nil
}

// CommissionScheme is a named, validated share configuration
type CommissionScheme struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Shares    Shares
	Lifecycle shared.Lifecycle
}

// NewCommissionScheme validates the shares before the scheme can be used
func NewCommissionScheme(code, name string, shares Shares) (*CommissionScheme, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_SCHEME_CODE", "Scheme code cannot be empty")
	}
	if err := shares.Validate(); err != nil {
		return nil, err
	}
	return &CommissionScheme{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Shares:            shares,
		Lifecycle:         shared.LifecycleActive,
	}, nil
}

// UpdateShares replaces the shares after validating them
func (c *CommissionScheme) UpdateShares(shares Shares) error {
	if err := shares.Validate(); err != nil {
		return err
	}
	c.Shares = shares
	c.Touch(time.Now())
	return nil
}

// Split is the fee broken down per party
type Split struct {
	SourceBranch      decimal.Decimal
	DestinationBranch decimal.Decimal
	HeadOffice        decimal.Decimal
	PartnerOne        decimal.Decimal
	PartnerTwo        decimal.Decimal
}

// Total returns the sum of all parts
func (s Split) Total() decimal.Decimal {
	return s.SourceBranch.Add(s.DestinationBranch).Add(s.HeadOffice).Add(s.PartnerOne).Add(s.PartnerTwo)
}

// Split divides fee in whole currency units. Rounding remainders go to
// head office so the parts always add up to the fee.
func (c *CommissionScheme) Split(fee decimal.Decimal) Split {
	if !fee.IsPositive() {
		return Split{}
	}
	part := func(pct decimal.Decimal) decimal.Decimal {
		return fee.Mul(pct).Div(hundred).Floor()
	}
	s := Split{
		SourceBranch:      part(c.Shares.SourceBranch),
		DestinationBranch: part(c.Shares.DestinationBranch),
		PartnerOne:        part(c.Shares.PartnerOne),
		PartnerTwo:        part(c.Shares.PartnerTwo),
	}
	s.HeadOffice = fee.Sub(s.SourceBranch).Sub(s.DestinationBranch).Sub(s.PartnerOne).Sub(s.PartnerTwo)
	return s
}
