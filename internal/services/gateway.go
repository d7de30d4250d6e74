package services

import (
	"context"
	"encoding/json"

	"pmsportal/internal/clients/cashfree"
)

// PaymentGateway is the part of the gateway client the services depend on.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req cashfree.CreateOrderRequest) (*cashfree.Order, error)
	GetOrder(ctx context.Context, orderID string) (*cashfree.Order, error)
	GetOrderPayments(ctx context.Context, orderID string) ([]cashfree.Payment, error)
	CreateSubscription(ctx context.Context, req cashfree.CreateSubscriptionRequest) (*cashfree.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*cashfree.Subscription, error)
	ManageSubscription(ctx context.Context, subscriptionID string, action cashfree.SubscriptionAction) (json.RawMessage, error)
}

var _ PaymentGateway = (*cashfree.Client)(nil)
