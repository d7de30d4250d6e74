package services

import (
	"context"
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

type OrderService interface {
	CreateOrder(ctx context.Context, req request_models.CreateOrderRequest) (*response_models.CreateOrderResponse, error)
	// PaymentDetails looks a transaction up by any identifier it is known under, then falls
	// back to a substring search.
	PaymentDetails(ctx context.Context, identifier string) (*response_models.PaymentDetailsResponse, error)
}

type orderService struct {
	repo    repositories.TransactionRepository
	gateway PaymentGateway
	cfg     PaymentConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewOrderService(repo repositories.TransactionRepository, gateway PaymentGateway, cfg PaymentConfig, log zerolog.Logger) OrderService {
	return &orderService{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		log:     log.With().Str("component", "orders").Logger(),
		now:     time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req request_models.CreateOrderRequest) (*response_models.CreateOrderResponse, error) {
	nuvamaCode := strings.TrimSpace(req.NuvamaCode)
	if nuvamaCode == "" {
		return nil, fmt.Errorf("%w: nuvama_code is required", utils.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", utils.ErrValidation)
	}

	paymentType := dbm.PaymentType(strings.ToUpper(strings.TrimSpace(req.PaymentType)))
	switch paymentType {
	case "":
		paymentType = dbm.PaymentTypeOneTime
		if req.IsNewStrategy {
			paymentType = dbm.PaymentTypeNewStrategy
		}
	case dbm.PaymentTypeOneTime, dbm.PaymentTypeNewStrategy:
	default:
		return nil, fmt.Errorf("%w: payment_type must be ONE_TIME or NEW_STRATEGY", utils.ErrValidation)
	}
	isNewStrategy := paymentType == dbm.PaymentTypeNewStrategy
	strategyType := strings.TrimSpace(req.StrategyType)
	if isNewStrategy && strategyType == "" {
		return nil, fmt.Errorf("%w: strategy_type is required for a new strategy", utils.ErrValidation)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", utils.ErrValidation)
	}

	suffix, err := utils.GenerateShortID(4)
	if err != nil {
		return nil, err
	}
	orderID := fmt.Sprintf("ORD_%d_%s", s.now().Unix(), suffix)

	txn := &dbm.PaymentTransaction{
		OrderID:       orderID,
		ClientID:      req.ClientID,
		NuvamaCode:    nuvamaCode,
		ClientName:    req.ClientName,
		Amount:        req.Amount,
		Currency:      currency,
		PaymentType:   paymentType,
		PaymentStatus: dbm.StatusCreated,
		IsNewStrategy: isNewStrategy,
	}
	if strategyType != "" {
		txn.StrategyType = &strategyType
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	tags := map[string]string{"nuvama_code": nuvamaCode, "payment_type": string(paymentType)}
	if strategyType != "" {
		tags["strategy_type"] = strategyType
	}
	order, err := s.gateway.CreateOrder(ctx, cashfree.CreateOrderRequest{
		OrderID:       orderID,
		OrderAmount:   req.Amount.InexactFloat64(),
		OrderCurrency: currency,
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:    nuvamaCode,
			CustomerName:  req.ClientName,
			CustomerEmail: req.Email,
			CustomerPhone: req.Phone,
		},
		OrderMeta: &cashfree.OrderMeta{
			ReturnURL: s.cfg.ReturnURL,
			NotifyURL: s.cfg.NotifyURL,
		},
		OrderTags: tags,
	})
	if err != nil {
		markCreateFailed(ctx, s.repo, s.log, txn, err)
		return nil, err
	}

	status := MapStatus(order.OrderStatus, paymentType)
	if order.OrderStatus == "" {
		status = dbm.StatusCreated
	}
	// empty gateway ids stay NULL so the unsync sweep filter still finds the row
	fields := map[string]interface{}{"payment_status": status}
	if order.CfOrderID != "" {
		fields["cf_order_id"] = order.CfOrderID
	}
	if order.PaymentSessionID != "" {
		fields["payment_session_id"] = order.PaymentSessionID
	}
	if len(order.Raw) > 0 {
		fields["gateway_response"] = datatypes.JSON(order.Raw)
	}
	if err := s.repo.UpdateWithVersion(ctx, orderID, txn.Version, fields); err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", orderID).Str("nuvama_code", nuvamaCode).Str("type", string(paymentType)).Msg("Order created")
	return &response_models.CreateOrderResponse{
		OrderID:          orderID,
		CfOrderID:        order.CfOrderID,
		PaymentSessionID: order.PaymentSessionID,
		Status:           status,
	}, nil
}

func (s *orderService) PaymentDetails(ctx context.Context, identifier string) (*response_models.PaymentDetailsResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: id is required", utils.ErrValidation)
	}

	txn, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if txn != nil {
		return &response_models.PaymentDetailsResponse{Exact: true, Matches: []dbm.PaymentTransaction{*txn}}, nil
	}

	matches, err := s.repo.SearchLike(ctx, identifier, 20)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no transaction matches %q", utils.ErrTransactionNotFound, identifier)
	}
	return &response_models.PaymentDetailsResponse{Matches: matches}, nil
}
