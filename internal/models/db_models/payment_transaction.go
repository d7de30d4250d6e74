package db_models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentType string

const (
	PaymentTypeOneTime     PaymentType = "ONE_TIME"
	PaymentTypeSIP         PaymentType = "SIP"
	PaymentTypeNewStrategy PaymentType = "NEW_STRATEGY"
)

// PaymentStatus is the stored status. One-time orders and SIPs draw from different
// subsets, see services.MapStatus.
type PaymentStatus string

const (
	StatusCreated             PaymentStatus = "CREATED"
	StatusInitialized         PaymentStatus = "INITIALIZED"
	StatusPending             PaymentStatus = "PENDING"
	StatusBankApprovalPending PaymentStatus = "BANK_APPROVAL_PENDING"
	StatusActive              PaymentStatus = "ACTIVE"
	StatusOnHold              PaymentStatus = "ON_HOLD"
	StatusPaused              PaymentStatus = "PAUSED"
	StatusCustomerPaused      PaymentStatus = "CUSTOMER_PAUSED"
	StatusPaid                PaymentStatus = "PAID"
	StatusCompleted           PaymentStatus = "COMPLETED"
	StatusFailed              PaymentStatus = "FAILED"
	StatusCancelled           PaymentStatus = "CANCELLED"
	StatusExpired             PaymentStatus = "EXPIRED"
	StatusUserDropped         PaymentStatus = "USER_DROPPED"
)

// PaymentTransaction is one order or one subscription. Rows are never deleted.
type PaymentTransaction struct {
	OrderID    string `gorm:"primaryKey;size:64" json:"order_id"`
	ClientID   string `gorm:"size:64;index" json:"client_id"`
	NuvamaCode string `gorm:"size:32;not null;index" json:"nuvama_code"`
	ClientName string `json:"client_name"`

	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null;default:INR" json:"currency"`

	PaymentType   PaymentType   `gorm:"size:16;not null;index" json:"payment_type"`
	PaymentStatus PaymentStatus `gorm:"size:32;not null;index" json:"payment_status"`

	// Gateway identifiers, null until the create call succeeds
	PaymentSessionID *string `json:"payment_session_id"`
	CfOrderID        *string `gorm:"index" json:"cf_order_id"`
	CfSubscriptionID *string `gorm:"index" json:"cf_subscription_id"`
	CfPaymentID      *string `gorm:"index" json:"cf_payment_id"`

	PaymentTime    *time.Time     `json:"payment_time"`
	PaymentGroup   *string        `json:"payment_group"`
	PaymentMethod  datatypes.JSON `json:"payment_method"`
	PaymentMessage *string        `json:"payment_message"`

	AccountNumber *string `json:"account_number,omitempty"`
	IFSCCode      *string `gorm:"column:ifsc_code" json:"ifsc_code,omitempty"`

	// Recurrence, SIP only
	Frequency         *string    `json:"frequency"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	TotalInstallments *int       `json:"total_installments"`
	NextChargeDate    *time.Time `json:"next_charge_date"`

	IsNewStrategy bool    `gorm:"not null;default:false" json:"is_new_strategy"`
	StrategyType  *string `json:"strategy_type"`

	GatewayResponse    datatypes.JSON `json:"gateway_response,omitempty"`
	LastGatewayEventAt *time.Time     `json:"last_gateway_event_at"` // gateway clock
	LastSyncedAt       *time.Time     `json:"last_synced_at"`        // local clock
	Version            int64          `gorm:"not null;default:1" json:"version"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	CanceledAt *time.Time `json:"canceled_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }

func (t *PaymentTransaction) IsSIP() bool { return t.PaymentType == PaymentTypeSIP }

// GatewaySubscriptionID returns the gateway's subscription id, or "" when not yet assigned.
func (t *PaymentTransaction) GatewaySubscriptionID() string {
	if t.CfSubscriptionID == nil {
		return ""
	}
	return *t.CfSubscriptionID
}
