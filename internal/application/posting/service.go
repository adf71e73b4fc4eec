// Package posting manages commission schemes and exposes posting batches
// together with the ledger's verdict on them.
package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles commission schemes and posting batch lookups
type Service struct {
	repos   custody.Repositories
	journal *posting.Ledger
	logger  *zap.Logger
}

// NewService creates a new posting service
func NewService(repos custody.Repositories, journal *posting.Ledger, logger *zap.Logger) *Service {
	return &Service{
		repos:   repos,
		journal: journal,
		logger:  logger,
	}
}

// SchemeRequest describes a commission scheme
type SchemeRequest struct {
	Code   string
	Name   string
	Shares posting.Shares
}

// BatchReport is a stored batch with its journal lines and warnings
type BatchReport struct {
	Batch        *posting.Batch
	Verification posting.Verification
}

// CreateScheme stores a new scheme. Shares that do not sum to exactly
// 100 are refused here, before any operation can reference the scheme.
func (s *Service) CreateScheme(ctx context.Context, req SchemeRequest) (*posting.CommissionScheme, error) {
	scheme, err := posting.NewCommissionScheme(req.Code, req.Name, req.Shares)
	if err != nil {
		return nil, err
	}
	existing, err := s.repos.Schemes().FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, posting.ErrSchemeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, posting.ErrSchemeExists.WithMessage(fmt.Sprintf("Commission scheme %s already exists", req.Code))
	}
	if err := s.repos.Schemes().Save(ctx, scheme); err != nil {
		return nil, err
	}
	s.logger.Info("commission scheme created",
		zap.String("code", scheme.Code),
		zap.String("head_office", scheme.Shares.HeadOffice.String()),
	)
	return scheme, nil
}

// EnsureScheme returns the scheme with req.Code, creating it when absent
func (s *Service) EnsureScheme(ctx context.Context, req SchemeRequest) (*posting.CommissionScheme, error) {
	existing, err := s.repos.Schemes().FindByCode(ctx, req.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, posting.ErrSchemeNotFound) {
		return nil, err
	}
	return s.CreateScheme(ctx, req)
}

// UpdateShares replaces the shares of a scheme after validating them
func (s *Service) UpdateShares(ctx context.Context, id uuid.UUID, shares posting.Shares) (*posting.CommissionScheme, error) {
	scheme, err := s.repos.Schemes().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scheme.UpdateShares(shares); err != nil {
		return nil, err
	}
	if err := s.repos.Schemes().Save(ctx, scheme); err != nil {
		return nil, err
	}
	s.logger.Info("commission scheme shares updated", zap.String("code", scheme.Code))
	return scheme, nil
}

// GetScheme finds a scheme by code
func (s *Service) GetScheme(ctx context.Context, code string) (*posting.CommissionScheme, error) {
	return s.repos.Schemes().FindByCode(ctx, code)
}

// ListSchemes returns every live scheme
func (s *Service) ListSchemes(ctx context.Context) ([]posting.CommissionScheme, error) {
	return s.repos.Schemes().List(ctx)
}

// PreviewSplit shows how a fee would be divided by a scheme
func (s *Service) PreviewSplit(ctx context.Context, code string, fee decimal.Decimal) (posting.Split, error) {
	scheme, err := s.repos.Schemes().FindByCode(ctx, code)
	if err != nil {
		return posting.Split{}, err
	}
	return scheme.Split(fee), nil
}

// Inspect loads a batch and expands it into journal lines
func (s *Service) Inspect(ctx context.Context, reference string) (*BatchReport, error) {
	batch, err := s.repos.Batches().FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return &BatchReport{Batch: batch, Verification: s.journal.Verify(batch)}, nil
}
