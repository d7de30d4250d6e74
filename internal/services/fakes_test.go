package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"pmsportal/internal/clients/cashfree"
	dbm "pmsportal/internal/models/db_models"
)

type manageCall struct {
	ID     string
	Action cashfree.SubscriptionAction
}

// fakeGateway answers from canned maps and records every call.
type fakeGateway struct {
	mu sync.Mutex

	orders        map[string]*cashfree.Order
	payments      map[string][]cashfree.Payment
	subscriptions map[string]*cashfree.Subscription
	errs          map[string]error // keyed by the id being fetched or managed

	createOrderErr   error
	createOrderReply *cashfree.Order // replaces the generated reply when set
	createSubErr     error
	manageErr        error

	createdOrders []cashfree.CreateOrderRequest
	createdSubs   []cashfree.CreateSubscriptionRequest
	manageCalls   []manageCall
	fetches       []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:        map[string]*cashfree.Order{},
		payments:      map[string][]cashfree.Payment{},
		subscriptions: map[string]*cashfree.Subscription{},
		errs:          map[string]error{},
	}
}

func (f *fakeGateway) CreateOrder(_ context.Context, req cashfree.CreateOrderRequest) (*cashfree.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdOrders = append(f.createdOrders, req)
	if f.createOrderErr != nil {
		return nil, f.createOrderErr
	}
	if f.createOrderReply != nil {
		return f.createOrderReply, nil
	}
	return &cashfree.Order{
		CfOrderID:        "cf_" + req.OrderID,
		OrderID:          req.OrderID,
		OrderStatus:      "ACTIVE",
		PaymentSessionID: "session_" + req.OrderID,
		Raw:              json.RawMessage(`{"order_status":"ACTIVE"}`),
	}, nil
}

func (f *fakeGateway) GetOrder(_ context.Context, orderID string) (*cashfree.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, orderID)
	if err := f.errs[orderID]; err != nil {
		return nil, err
	}
	if o, ok := f.orders[orderID]; ok {
		return o, nil
	}
	return nil, &cashfree.GatewayError{StatusCode: 404, Message: "order not found"}
}

func (f *fakeGateway) GetOrderPayments(_ context.Context, orderID string) ([]cashfree.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[orderID], nil
}

func (f *fakeGateway) CreateSubscription(_ context.Context, req cashfree.CreateSubscriptionRequest) (*cashfree.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdSubs = append(f.createdSubs, req)
	if f.createSubErr != nil {
		return nil, f.createSubErr
	}
	return &cashfree.Subscription{
		CfSubscriptionID:      "cf_" + req.SubscriptionID,
		SubscriptionID:        req.SubscriptionID,
		SubscriptionStatus:    "INITIALIZED",
		SubscriptionSessionID: "subsess_" + req.SubscriptionID,
		Raw:                   json.RawMessage(`{"subscription_status":"INITIALIZED"}`),
	}, nil
}

func (f *fakeGateway) GetSubscription(_ context.Context, id string) (*cashfree.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, id)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	if s, ok := f.subscriptions[id]; ok {
		return s, nil
	}
	return nil, &cashfree.GatewayError{StatusCode: 404, Message: "subscription not found"}
}

func (f *fakeGateway) ManageSubscription(_ context.Context, id string, action cashfree.SubscriptionAction) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manageCalls = append(f.manageCalls, manageCall{ID: id, Action: action})
	if f.manageErr != nil {
		return nil, f.manageErr
	}
	return json.RawMessage(`{"subscription_id":"` + id + `","action":"` + string(action) + `"}`), nil
}

type fakeMail struct {
	mu         sync.Mutex
	err        error
	payments   []PaymentNotification
	inquiries  []*dbm.Inquiry
	otpTo      string
	otpCode    string
	otpTTL     time.Duration
	otpSendErr error
}

func (m *fakeMail) SendPaymentNotification(n PaymentNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, n)
	return m.err
}

func (m *fakeMail) SendInquiryNotification(inquiry *dbm.Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inquiries = append(m.inquiries, inquiry)
	return m.err
}

func (m *fakeMail) SendOTP(to, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otpTo, m.otpCode, m.otpTTL = to, code, ttl
	return m.otpSendErr
}

var errSMTPDown = errors.New("smtp: connection refused")
