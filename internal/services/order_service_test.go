package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmsportal/internal/clients/cashfree"
	dbm "pmsportal/internal/models/db_models"
	"pmsportal/internal/models/request_models"
	"pmsportal/internal/repositories"
	"pmsportal/internal/testutil"
	"pmsportal/pkg/utils"
)

func TestCreateOrder_StoresGatewayIdentifiers(t *testing.T) {
	db := testutil.NewTestDB(t)
	gw := newFakeGateway()
	svc := NewOrderService(repositories.NewTransactionRepository(db), gw, PaymentConfig{NotifyURL: "https://api/webhook"}, zerolog.Nop())

	res, err := svc.CreateOrder(context.Background(), request_models.CreateOrderRequest{
		NuvamaCode: "C100",
		ClientName: "Asha",
		Amount:     decimal.RequireFromString("2500.50"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^ORD_\d+_[0-9a-f]{8}$`, res.OrderID)
	assert.Equal(t, dbm.StatusActive, res.Status)
	assert.Equal(t, "session_"+res.OrderID, res.PaymentSessionID)

	require.Len(t, gw.createdOrders, 1)
	assert.Equal(t, "INR", gw.createdOrders[0].OrderCurrency)
	assert.Equal(t, 2500.5, gw.createdOrders[0].OrderAmount)
	assert.Equal(t, "https://api/webhook", gw.createdOrders[0].OrderMeta.NotifyURL)

	row := testutil.Reload(t, db, res.OrderID)
	assert.Equal(t, dbm.PaymentTypeOneTime, row.PaymentType)
	assert.Equal(t, dbm.StatusActive, row.PaymentStatus)
	require.NotNil(t, row.CfOrderID)
	assert.Equal(t, "cf_"+res.OrderID, *row.CfOrderID)
	assert.NotEmpty(t, row.GatewayResponse)
}

func TestCreateOrder_BlankGatewayIDsStayUnsynced(t *testing.T) {
	db := testutil.NewTestDB(t)
	gw := newFakeGateway()
	gw.createOrderReply = &cashfree.Order{OrderStatus: "ACTIVE"}
	repo := repositories.NewTransactionRepository(db)
	svc := NewOrderService(repo, gw, PaymentConfig{}, zerolog.Nop())

	res, err := svc.CreateOrder(context.Background(), request_models.CreateOrderRequest{NuvamaCode: "C100", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	row := testutil.Reload(t, db, res.OrderID)
	assert.Nil(t, row.CfOrderID)
	assert.Nil(t, row.PaymentSessionID)

	unsynced, err := repo.ListByAccount(context.Background(), "C100", repositories.TransactionFilter{MissingGateway: true})
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, res.OrderID, unsynced[0].OrderID)
}

func TestCreateOrder_NewStrategy(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewOrderService(repositories.NewTransactionRepository(db), newFakeGateway(), PaymentConfig{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, request_models.CreateOrderRequest{NuvamaCode: "C100", Amount: decimal.NewFromInt(100000), IsNewStrategy: true})
	assert.ErrorIs(t, err, utils.ErrValidation)

	res, err := svc.CreateOrder(ctx, request_models.CreateOrderRequest{
		NuvamaCode: "C100", Amount: decimal.NewFromInt(100000), IsNewStrategy: true, StrategyType: "momentum",
	})
	require.NoError(t, err)
	row := testutil.Reload(t, db, res.OrderID)
	assert.Equal(t, dbm.PaymentTypeNewStrategy, row.PaymentType)
	assert.True(t, row.IsNewStrategy)
	require.NotNil(t, row.StrategyType)
	assert.Equal(t, "momentum", *row.StrategyType)
}

func TestCreateOrder_Validation(t *testing.T) {
	db := testutil.NewTestDB(t)
	gw := newFakeGateway()
	svc := NewOrderService(repositories.NewTransactionRepository(db), gw, PaymentConfig{}, zerolog.Nop())
	ctx := context.Background()

	for name, req := range map[string]request_models.CreateOrderRequest{
		"no code":      {Amount: decimal.NewFromInt(1)},
		"no amount":    {NuvamaCode: "C100"},
		"negative":     {NuvamaCode: "C100", Amount: decimal.NewFromInt(-5)},
		"sip type":     {NuvamaCode: "C100", Amount: decimal.NewFromInt(5), PaymentType: "SIP"},
		"bad currency": {NuvamaCode: "C100", Amount: decimal.NewFromInt(5), Currency: "RUPEE"},
	} {
		_, err := svc.CreateOrder(ctx, req)
		assert.ErrorIs(t, err, utils.ErrValidation, name)
	}
	assert.Empty(t, gw.createdOrders)
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	gw := newFakeGateway()
	gw.createOrderErr = &cashfree.GatewayError{StatusCode: 400, Message: "order_amount : should be greater than 1"}
	repo := repositories.NewTransactionRepository(db)
	svc := NewOrderService(repo, gw, PaymentConfig{}, zerolog.Nop())

	_, err := svc.CreateOrder(context.Background(), request_models.CreateOrderRequest{NuvamaCode: "C100", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)

	rows, err := repo.ListByAccount(context.Background(), "C100", repositories.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dbm.StatusFailed, rows[0].PaymentStatus)
	assert.Nil(t, rows[0].CfOrderID)
}

func TestPaymentDetails(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewOrderService(repositories.NewTransactionRepository(db), newFakeGateway(), PaymentConfig{}, zerolog.Nop())
	testutil.SeedOrder(t, db, "ORD_1700000000_deadbeef", "C100", dbm.StatusPaid)
	ctx := context.Background()

	res, err := svc.PaymentDetails(ctx, "sess_ORD_1700000000_deadbeef")
	require.NoError(t, err)
	assert.True(t, res.Exact)
	require.Len(t, res.Matches, 1)

	res, err = svc.PaymentDetails(ctx, "deadbe")
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Len(t, res.Matches, 1)

	_, err = svc.PaymentDetails(ctx, "nothing-like-this")
	assert.ErrorIs(t, err, utils.ErrTransactionNotFound)

	_, err = svc.PaymentDetails(ctx, " ")
	assert.ErrorIs(t, err, utils.ErrValidation)
}
