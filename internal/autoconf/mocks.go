package autoconf

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockWorker is a mock implementation of the Worker interface.
type MockWorker struct {
	mock.Mock
}

func (m *MockWorker) Acquire(ctx context.Context, iface string) (*Lease, error) {
	args := m.Called(ctx, iface)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lease), args.Error(1)
}

func (m *MockWorker) Renew(ctx context.Context, lease *Lease) (*Lease, error) {
	args := m.Called(ctx, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lease), args.Error(1)
}
