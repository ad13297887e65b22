package reconciliation

import (
	"context"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (_m *MockCustomerRepository) ListActive(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) FindByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) FindNames(ctx context.Context, customerIDs []string) (map[string]string, error) {
	ret := _m.Called(ctx, customerIDs)
	var r0 map[string]string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]string)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) Insert(ctx context.Context, c *customer.Customer) error {
	return _m.Called(ctx, c).Error(0)
}

func (_m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return _m.Called(ctx, c).Error(0)
}

func (_m *MockCustomerRepository) Delete(ctx context.Context, customerID string) error {
	return _m.Called(ctx, customerID).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (_m *MockPaymentRepository) ListByPeriod(ctx context.Context, period payment.Period) ([]*payment.Payment, error) {
	ret := _m.Called(ctx, period)
	var r0 []*payment.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*payment.Payment)
	}
	return r0, ret.Error(1)
}

func (_m *MockPaymentRepository) ListHistory(ctx context.Context, period payment.Period) ([]*payment.Payment, error) {
	ret := _m.Called(ctx, period)
	var r0 []*payment.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*payment.Payment)
	}
	return r0, ret.Error(1)
}

func (_m *MockPaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	return _m.Called(ctx, p).Error(0)
}

func (_m *MockPaymentRepository) Delete(ctx context.Context, paymentID string) error {
	return _m.Called(ctx, paymentID).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (_m *MockNotifier) Notify(ctx context.Context, change event.Change) {
	_m.Called(ctx, change)
}

var (
	_ customer.CustomerRepository = (*MockCustomerRepository)(nil)
	_ payment.Repository          = (*MockPaymentRepository)(nil)
	_ event.Notifier              = (*MockNotifier)(nil)
)
