package handler_test

import (
	"context"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/invoice"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/event"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (_m *MockLedger) View(ctx context.Context, q reconciliation.Query) (*reconciliation.View, error) {
	ret := _m.Called(ctx, q)

	var r0 *reconciliation.View
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*reconciliation.View)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) TogglePayment(ctx context.Context, q reconciliation.Query, customerID string) (*reconciliation.View, error) {
	ret := _m.Called(ctx, q, customerID)

	var r0 *reconciliation.View
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*reconciliation.View)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) History(ctx context.Context, period payment.Period) (*reconciliation.History, error) {
	ret := _m.Called(ctx, period)

	var r0 *reconciliation.History
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*reconciliation.History)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) RegisterCustomer(ctx context.Context, fields customer.Fields) (*customer.Customer, error) {
	ret := _m.Called(ctx, fields)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) EditCustomer(ctx context.Context, q reconciliation.Query, customerID string, fields customer.Fields) (*reconciliation.View, error) {
	ret := _m.Called(ctx, q, customerID, fields)

	var r0 *reconciliation.View
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*reconciliation.View)
	}
	return r0, ret.Error(1)
}

func (_m *MockLedger) DeleteCustomer(ctx context.Context, q reconciliation.Query, customerID string, confirmed bool) (*reconciliation.View, error) {
	ret := _m.Called(ctx, q, customerID, confirmed)

	var r0 *reconciliation.View
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*reconciliation.View)
	}
	return r0, ret.Error(1)
}

type MockInvoiceService struct {
	mock.Mock
}

func (_m *MockInvoiceService) Render(ctx context.Context, customerID string, period payment.Period) (*invoice.Document, error) {
	ret := _m.Called(ctx, customerID, period)

	var r0 *invoice.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*invoice.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockInvoiceService) Share(ctx context.Context, customerID string, period payment.Period) (*invoice.Share, error) {
	ret := _m.Called(ctx, customerID, period)

	var r0 *invoice.Share
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*invoice.Share)
	}
	return r0, ret.Error(1)
}

// fakeFeed hands out a single channel the test writes to.
type fakeFeed struct {
	mu        sync.Mutex
	ch        chan event.Change
	period    payment.Period
	cancelled bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan event.Change, 4)}
}

func (f *fakeFeed) Subscribe(period payment.Period) (<-chan event.Change, func()) {
	f.mu.Lock()
	f.period = period
	f.mu.Unlock()
	return f.ch, func() {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
	}
}

func (f *fakeFeed) subscribedPeriod() payment.Period {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

func (f *fakeFeed) wasCancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}
