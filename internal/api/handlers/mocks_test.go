package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/talx-hub/gopher-cashback/internal/cashback"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req *order.CreateRequest,
) (order.CreatedOrder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(order.CreatedOrder), args.Error(1)
}

type mockParametersService struct {
	mock.Mock
}

func (m *mockParametersService) GetParameters(ctx context.Context) (parameters.Parameters, error) {
	args := m.Called(ctx)
	return args.Get(0).(parameters.Parameters), args.Error(1)
}

func (m *mockParametersService) UpdateParameters(ctx context.Context, patch parameters.Patch,
) (parameters.Parameters, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(parameters.Parameters), args.Error(1)
}

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, partnerID string,
) (cashback.WalletStatement, error) {
	args := m.Called(ctx, partnerID)
	return args.Get(0).(cashback.WalletStatement), args.Error(1)
}

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
