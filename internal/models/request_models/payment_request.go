package request_models

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	NuvamaCode    string          `json:"nuvama_code" binding:"required"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name"`
	Email         string          `json:"email" binding:"omitempty,email"`
	Phone         string          `json:"phone"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentType   string          `json:"payment_type"`
	IsNewStrategy bool            `json:"is_new_strategy"`
	StrategyType  string          `json:"strategy_type"`
}

type SetupSIPRequest struct {
	NuvamaCode        string          `json:"nuvama_code" binding:"required"`
	ClientID          string          `json:"client_id"`
	ClientName        string          `json:"client_name"`
	Email             string          `json:"email" binding:"omitempty,email"`
	Phone             string          `json:"phone"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Frequency         string          `json:"frequency" binding:"required"`
	StartDate         string          `json:"start_date" binding:"required"`
	EndDate           string          `json:"end_date"`
	TotalInstallments *int            `json:"total_installments"`
	AccountNumber     string          `json:"account_number"`
	IFSCCode          string          `json:"ifsc_code"`
}

// ManageSIPRequest serves manage-sip, cancel-sip and pause-resume-sip. Action is
// ignored by cancel-sip.
type ManageSIPRequest struct {
	SubscriptionID string `json:"subscription_id"`
	NuvamaCode     string `json:"nuvama_code"`
	Action         string `json:"action"`
}
