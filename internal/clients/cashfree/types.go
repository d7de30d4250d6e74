package cashfree

import "encoding/json"

type CustomerDetails struct {
	CustomerID            string `json:"customer_id,omitempty"`
	CustomerName          string `json:"customer_name,omitempty"`
	CustomerEmail         string `json:"customer_email,omitempty"`
	CustomerPhone         string `json:"customer_phone,omitempty"`
	CustomerBankAccountNo string `json:"customer_bank_account_number,omitempty"`
	CustomerBankIFSC      string `json:"customer_bank_ifsc,omitempty"`
}

type OrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type CreateOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails CustomerDetails   `json:"customer_details"`
	OrderMeta       *OrderMeta        `json:"order_meta,omitempty"`
	OrderNote       string            `json:"order_note,omitempty"`
	OrderTags       map[string]string `json:"order_tags,omitempty"`
}

type Order struct {
	CfOrderID        string            `json:"cf_order_id"`
	OrderID          string            `json:"order_id"`
	OrderAmount      float64           `json:"order_amount"`
	OrderCurrency    string            `json:"order_currency"`
	OrderStatus      string            `json:"order_status"`
	PaymentSessionID string            `json:"payment_session_id"`
	OrderExpiryTime  string            `json:"order_expiry_time,omitempty"`
	OrderTags        map[string]string `json:"order_tags,omitempty"`
	CreatedAt        string            `json:"created_at,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type Payment struct {
	CfPaymentID    json.Number     `json:"cf_payment_id"`
	OrderID        string          `json:"order_id"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentAmount  float64         `json:"payment_amount"`
	PaymentTime    string          `json:"payment_time"`
	PaymentGroup   string          `json:"payment_group"`
	PaymentMessage string          `json:"payment_message"`
	PaymentMethod  json.RawMessage `json:"payment_method,omitempty"`
}

type PlanDetails struct {
	PlanName            string  `json:"plan_name"`
	PlanType            string  `json:"plan_type"`
	PlanRecurringAmount float64 `json:"plan_recurring_amount,omitempty"`
	PlanMaxAmount       float64 `json:"plan_max_amount"`
	PlanMaxCycles       int     `json:"plan_max_cycles,omitempty"`
	PlanIntervals       int     `json:"plan_intervals,omitempty"`
	PlanIntervalType    string  `json:"plan_interval_type,omitempty"`
	PlanCurrency        string  `json:"plan_currency,omitempty"`
}

type AuthorizationDetails struct {
	AuthorizationAmount       float64  `json:"authorization_amount"`
	AuthorizationAmountRefund bool     `json:"authorization_amount_refund"`
	PaymentMethods            []string `json:"payment_methods,omitempty"`
}

type SubscriptionMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notification_url,omitempty"`
}

type CreateSubscriptionRequest struct {
	SubscriptionID              string               `json:"subscription_id"`
	CustomerDetails             CustomerDetails      `json:"customer_details"`
	PlanDetails                 PlanDetails          `json:"plan_details"`
	AuthorizationDetails        AuthorizationDetails `json:"authorization_details"`
	SubscriptionMeta            *SubscriptionMeta    `json:"subscription_meta,omitempty"`
	SubscriptionExpiryTime      string               `json:"subscription_expiry_time,omitempty"`
	SubscriptionFirstChargeTime string               `json:"subscription_first_charge_time,omitempty"`
	SubscriptionTags            map[string]string    `json:"subscription_tags,omitempty"`
	SubscriptionNote            string               `json:"subscription_note,omitempty"`
}

type Subscription struct {
	CfSubscriptionID      string `json:"cf_subscription_id"`
	SubscriptionID        string `json:"subscription_id"`
	SubscriptionStatus    string `json:"subscription_status"`
	SubscriptionSessionID string `json:"subscription_session_id"`
	NextScheduleDate      string `json:"next_schedule_date,omitempty"`
	SubscriptionExpiry    string `json:"subscription_expiry_time,omitempty"`
	AuthorizationDetails  *struct {
		AuthorizationStatus string `json:"authorization_status,omitempty"`
		PaymentGroup        string `json:"payment_group,omitempty"`
	} `json:"authorization_details,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// SubscriptionAction is the action accepted by the subscription manage endpoint.
type SubscriptionAction string

const (
	ActionPause    SubscriptionAction = "PAUSE"
	ActionActivate SubscriptionAction = "ACTIVATE"
	ActionCancel   SubscriptionAction = "CANCEL"
)

type manageSubscriptionRequest struct {
	SubscriptionID string             `json:"subscription_id"`
	Action         SubscriptionAction `json:"action"`
}
