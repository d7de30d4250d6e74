package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"pmsportal/internal/clients/cashfree"
	dbm "pmsportal/internal/models/db_models"
	"pmsportal/internal/models/request_models"
	"pmsportal/internal/models/response_models"
	"pmsportal/internal/repositories"
	"pmsportal/pkg/utils"
)

// PaymentConfig carries the redirect targets handed to the gateway on create.
type PaymentConfig struct {
	ReturnURL string
	NotifyURL string
}

type SIPService interface {
	SetupSIP(ctx context.Context, req request_models.SetupSIPRequest) (*response_models.SetupSIPResponse, error)
	Pause(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error)
	Resume(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error)
	Cancel(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error)
	// Manage dispatches CANCEL, PAUSE or ACTIVATE.
	Manage(ctx context.Context, subscriptionID, nuvamaCode, action string) (*response_models.LifecycleResult, error)
	// PauseResume accepts "pause" or "resume".
	PauseResume(ctx context.Context, subscriptionID, nuvamaCode, action string) (*response_models.LifecycleResult, error)
	Get(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.SIPDetail, error)
	ListForAccount(ctx context.Context, nuvamaCode string) ([]dbm.PaymentTransaction, error)
}

type sipPlan struct {
	intervalType string
	intervals    int
}

var sipFrequencies = map[string]sipPlan{
	"daily":       {"DAY", 1},
	"weekly":      {"WEEK", 1},
	"monthly":     {"MONTH", 1},
	"quarterly":   {"MONTH", 3},
	"half_yearly": {"MONTH", 6},
	"yearly":      {"YEAR", 1},
}

// Mandates without an end date are authorised for this long.
const defaultMandateYears = 30

type sipService struct {
	repo    repositories.TransactionRepository
	gateway PaymentGateway
	cfg     PaymentConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewSIPService(repo repositories.TransactionRepository, gateway PaymentGateway, cfg PaymentConfig, log zerolog.Logger) SIPService {
	return &sipService{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		log:     log.With().Str("component", "sip").Logger(),
		now:     time.Now,
	}
}

func (s *sipService) SetupSIP(ctx context.Context, req request_models.SetupSIPRequest) (*response_models.SetupSIPResponse, error) {
	nuvamaCode := strings.TrimSpace(req.NuvamaCode)
	if nuvamaCode == "" {
		return nil, fmt.Errorf("%w: nuvama_code is required", utils.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", utils.ErrValidation)
	}
	frequency := strings.ToLower(strings.TrimSpace(req.Frequency))
	plan, ok := sipFrequencies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported frequency %q", utils.ErrValidation, req.Frequency)
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", utils.ErrValidation)
	}
	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		e, err := utils.ParseDate(req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", utils.ErrValidation)
		}
		if !e.After(start) {
			return nil, fmt.Errorf("%w: end_date must be after start_date", utils.ErrValidation)
		}
		end = &e
	}
	if req.TotalInstallments != nil && *req.TotalInstallments <= 0 {
		return nil, fmt.Errorf("%w: total_installments must be positive", utils.ErrValidation)
	}
	accountNumber := strings.TrimSpace(req.AccountNumber)
	ifsc := strings.ToUpper(strings.TrimSpace(req.IFSCCode))
	if (accountNumber == "") != (ifsc == "") {
		return nil, fmt.Errorf("%w: account_number and ifsc_code must be given together", utils.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	suffix, err := utils.GenerateShortID(4)
	if err != nil {
		return nil, err
	}
	orderID := fmt.Sprintf("SIP_%d_%s", s.now().Unix(), suffix)

	txn := &dbm.PaymentTransaction{
		OrderID:           orderID,
		ClientID:          req.ClientID,
		NuvamaCode:        nuvamaCode,
		ClientName:        req.ClientName,
		Amount:            req.Amount,
		Currency:          currency,
		PaymentType:       dbm.PaymentTypeSIP,
		PaymentStatus:     dbm.StatusInitialized,
		Frequency:         &frequency,
		StartDate:         &start,
		EndDate:           end,
		TotalInstallments: req.TotalInstallments,
		NextChargeDate:    &start,
	}
	if accountNumber != "" {
		txn.AccountNumber = &accountNumber
		txn.IFSCCode = &ifsc
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	expiry := start.AddDate(defaultMandateYears, 0, 0)
	if end != nil {
		expiry = *end
	}
	amount := req.Amount.InexactFloat64()
	gwReq := cashfree.CreateSubscriptionRequest{
		SubscriptionID: orderID,
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:            nuvamaCode,
			CustomerName:          req.ClientName,
			CustomerEmail:         req.Email,
			CustomerPhone:         req.Phone,
			CustomerBankAccountNo: accountNumber,
			CustomerBankIFSC:      ifsc,
		},
		PlanDetails: cashfree.PlanDetails{
			PlanName:            fmt.Sprintf("%s SIP %s", strings.ToUpper(frequency[:1])+frequency[1:], orderID),
			PlanType:            "PERIODIC",
			PlanRecurringAmount: amount,
			PlanMaxAmount:       amount,
			PlanIntervals:       plan.intervals,
			PlanIntervalType:    plan.intervalType,
			PlanCurrency:        currency,
		},
		AuthorizationDetails: cashfree.AuthorizationDetails{
			AuthorizationAmount:       1,
			AuthorizationAmountRefund: true,
		},
		SubscriptionMeta: &cashfree.SubscriptionMeta{
			ReturnURL: s.cfg.ReturnURL,
			NotifyURL: s.cfg.NotifyURL,
		},
		SubscriptionExpiryTime:      utils.FormatRFC3339IST(expiry),
		SubscriptionFirstChargeTime: utils.FormatRFC3339IST(start),
		SubscriptionTags:            map[string]string{"nuvama_code": nuvamaCode, "order_id": orderID},
	}
	if req.TotalInstallments != nil {
		gwReq.PlanDetails.PlanMaxCycles = *req.TotalInstallments
	}

	sub, err := s.gateway.CreateSubscription(ctx, gwReq)
	if err != nil {
		markCreateFailed(ctx, s.repo, s.log, txn, err)
		return nil, err
	}

	fields := map[string]interface{}{}
	if sub.CfSubscriptionID != "" {
		fields["cf_subscription_id"] = sub.CfSubscriptionID
	}
	if sub.SubscriptionSessionID != "" {
		fields["payment_session_id"] = sub.SubscriptionSessionID
	}
	if len(sub.Raw) > 0 {
		fields["gateway_response"] = datatypes.JSON(sub.Raw)
	}
	if err := s.repo.UpdateWithVersion(ctx, orderID, txn.Version, fields); err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", orderID).Str("nuvama_code", nuvamaCode).Str("cf_subscription_id", sub.CfSubscriptionID).Msg("SIP created")
	return &response_models.SetupSIPResponse{
		OrderID:               orderID,
		CfSubscriptionID:      sub.CfSubscriptionID,
		SubscriptionSessionID: sub.SubscriptionSessionID,
		Status:                dbm.StatusInitialized,
	}, nil
}

func (s *sipService) Pause(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error) {
	return s.apply(ctx, SIPPause, subscriptionID, nuvamaCode)
}

func (s *sipService) Resume(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error) {
	return s.apply(ctx, SIPResume, subscriptionID, nuvamaCode)
}

func (s *sipService) Cancel(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error) {
	return s.apply(ctx, SIPCancel, subscriptionID, nuvamaCode)
}

func (s *sipService) Manage(ctx context.Context, subscriptionID, nuvamaCode, action string) (*response_models.LifecycleResult, error) {
	a := SIPAction(strings.ToUpper(strings.TrimSpace(action)))
	if _, ok := sipTransitions[a]; !ok {
		return nil, fmt.Errorf("%w: action must be one of CANCEL, PAUSE, ACTIVATE", utils.ErrValidation)
	}
	return s.apply(ctx, a, subscriptionID, nuvamaCode)
}

func (s *sipService) PauseResume(ctx context.Context, subscriptionID, nuvamaCode, action string) (*response_models.LifecycleResult, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "pause":
		return s.Pause(ctx, subscriptionID, nuvamaCode)
	case "resume":
		return s.Resume(ctx, subscriptionID, nuvamaCode)
	}
	return nil, fmt.Errorf("%w: action must be pause or resume", utils.ErrValidation)
}

// apply runs one lifecycle action. Nothing is written unless the transition is legal and
// the gateway accepted the call or reported the subscription already in the target state.
func (s *sipService) apply(ctx context.Context, action SIPAction, subscriptionID, nuvamaCode string) (*response_models.LifecycleResult, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	nuvamaCode = strings.TrimSpace(nuvamaCode)
	if subscriptionID == "" || nuvamaCode == "" {
		return nil, fmt.Errorf("%w: subscription_id and nuvama_code are required", utils.ErrValidation)
	}

	txn, err := s.repo.FindByOrderAndAccount(ctx, subscriptionID, nuvamaCode)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: subscription %s for account %s", utils.ErrTransactionNotFound, subscriptionID, nuvamaCode)
	}
	cfID := txn.GatewaySubscriptionID()
	if cfID == "" {
		return nil, fmt.Errorf("%w: subscription %s has no gateway subscription id", utils.ErrTransactionNotFound, subscriptionID)
	}

	target, err := CheckTransition(action, txn.PaymentStatus)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.ManageSubscription(ctx, cfID, gatewayAction(action))
	if err != nil {
		if !cashfree.IsAlreadyInState(err, gatewayAction(action)) {
			return nil, err
		}
		s.log.Info().Str("order_id", txn.OrderID).Str("action", string(action)).Msg("Gateway reports subscription already in target state")
		var ge *cashfree.GatewayError
		if errors.As(err, &ge) && json.Valid(ge.Body) {
			raw = ge.Body
		}
	}

	now := s.now()
	fields := map[string]interface{}{
		"payment_status": target,
		"updated_at":     now,
		"last_synced_at": now,
	}
	if IsTerminal(target) {
		fields["canceled_at"] = now
	}
	if len(raw) > 0 && json.Valid(raw) {
		fields["gateway_response"] = datatypes.JSON(raw)
	}
	if err := s.repo.UpdateWithVersion(ctx, txn.OrderID, txn.Version, fields); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", txn.OrderID).
		Str("action", string(action)).
		Str("from", string(txn.PaymentStatus)).
		Str("to", string(target)).
		Msg("SIP status changed")

	return &response_models.LifecycleResult{
		OrderID:         txn.OrderID,
		PreviousStatus:  txn.PaymentStatus,
		NewStatus:       target,
		GatewayResponse: raw,
	}, nil
}

func (s *sipService) Get(ctx context.Context, subscriptionID, nuvamaCode string) (*response_models.SIPDetail, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription_id is required", utils.ErrValidation)
	}

	var (
		txn *dbm.PaymentTransaction
		err error
	)
	if nuvamaCode != "" {
		txn, err = s.repo.FindByOrderAndAccount(ctx, subscriptionID, nuvamaCode)
	} else {
		txn, err = s.repo.FindByIdentifier(ctx, subscriptionID)
	}
	if err != nil {
		return nil, err
	}
	if txn == nil || !txn.IsSIP() {
		return nil, fmt.Errorf("%w: subscription %s", utils.ErrTransactionNotFound, subscriptionID)
	}

	detail := &response_models.SIPDetail{Transaction: txn}
	if cfID := txn.GatewaySubscriptionID(); cfID != "" {
		sub, err := s.gateway.GetSubscription(ctx, cfID)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", txn.OrderID).Msg("Could not fetch gateway subscription")
		} else {
			detail.Gateway = sub
		}
	}
	return detail, nil
}

func (s *sipService) ListForAccount(ctx context.Context, nuvamaCode string) ([]dbm.PaymentTransaction, error) {
	nuvamaCode = strings.TrimSpace(nuvamaCode)
	if nuvamaCode == "" {
		return nil, fmt.Errorf("%w: nuvama_code is required", utils.ErrValidation)
	}
	return s.repo.ListByAccount(ctx, nuvamaCode, repositories.TransactionFilter{
		Types: []dbm.PaymentType{dbm.PaymentTypeSIP},
	})
}

// markCreateFailed records a rejected create call on the freshly inserted row.
func markCreateFailed(ctx context.Context, repo repositories.TransactionRepository, log zerolog.Logger, txn *dbm.PaymentTransaction, cause error) {
	msg := cause.Error()
	var ge *cashfree.GatewayError
	if errors.As(cause, &ge) {
		msg = ge.Message
	}
	err := repo.UpdateWithVersion(ctx, txn.OrderID, txn.Version, map[string]interface{}{
		"payment_status":  dbm.StatusFailed,
		"payment_message": msg,
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", txn.OrderID).Msg("Failed to mark transaction as failed")
		return
	}
	log.Warn().Err(cause).Str("order_id", txn.OrderID).Msg("Gateway create failed")
}
