package testutil

import (
	"context"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBranchDirectory is a testify mock of custody.BranchDirectory
type MockBranchDirectory struct {
	mock.Mock
}

func (m *MockBranchDirectory) GetBranchByID(ctx context.Context, id uuid.UUID) (*custody.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*custody.Branch), args.Error(1)
}

func (m *MockBranchDirectory) GetBranches(ctx context.Context) ([]custody.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]custody.Branch), args.Error(1)
}

// MockCustomerDirectory is a testify mock of custody.CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) GetCustomerByID(ctx context.Context, id uuid.UUID) (*custody.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*custody.Customer), args.Error(1)
}

// MockNotifier is a testify mock of custody.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendNotification(ctx context.Context, customerID uuid.UUID, title, message string) error {
	args := m.Called(ctx, customerID, title, message)
	return args.Error(0)
}

var (
	_ custody.BranchDirectory   = (*MockBranchDirectory)(nil)
	_ custody.CustomerDirectory = (*MockCustomerDirectory)(nil)
	_ custody.Notifier          = (*MockNotifier)(nil)
)
