package response_models

import (
	"encoding/json"

	"pmsportal/internal/clients/cashfree"
	"pmsportal/internal/models/db_models"
)

type CreateOrderResponse struct {
	OrderID          string                  `json:"order_id"`
	CfOrderID        string                  `json:"cf_order_id"`
	PaymentSessionID string                  `json:"payment_session_id"`
	Status           db_models.PaymentStatus `json:"status"`
}

type SetupSIPResponse struct {
	OrderID               string                  `json:"order_id"`
	CfSubscriptionID      string                  `json:"cf_subscription_id"`
	SubscriptionSessionID string                  `json:"subscription_session_id"`
	Status                db_models.PaymentStatus `json:"status"`
}

// LifecycleResult is returned by pause, resume and cancel.
type LifecycleResult struct {
	OrderID         string                  `json:"order_id"`
	PreviousStatus  db_models.PaymentStatus `json:"previous_status"`
	NewStatus       db_models.PaymentStatus `json:"new_status"`
	GatewayResponse json.RawMessage         `json:"gateway_response,omitempty"`
}

type SIPDetail struct {
	Transaction *db_models.PaymentTransaction `json:"transaction"`
	Gateway     *cashfree.Subscription        `json:"gateway,omitempty"`
}

type PaymentDetailsResponse struct {
	Exact   bool                           `json:"exact"`
	Matches []db_models.PaymentTransaction `json:"matches"`
}

type RowError struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

type SyncReport struct {
	NuvamaCode string     `json:"nuvama_code"`
	Total      int        `json:"total"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	NotFound   int        `json:"not_found"`
	Errors     []RowError `json:"errors,omitempty"`
}

type WebhookResult struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"order_id"`
	StatusUpdated bool   `json:"status_updated"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}
