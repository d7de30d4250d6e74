package cashfree

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      server.URL + "/",
		MaxRetries:   2,
	}, zerolog.Nop())
	require.NoError(t, err)
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Config{ClientID: "id"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient(Config{ClientSecret: "secret"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCreateOrder_SendsHeadersAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "test-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "test-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))
		assert.Equal(t, "ORD_1", r.Header.Get("x-idempotency-key"))

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ORD_1", req.OrderID)
		assert.Equal(t, 2500.0, req.OrderAmount)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cf_order_id":"2149460581","order_id":"ORD_1","order_status":"ACTIVE","payment_session_id":"session_abc"}`))
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		OrderID:       "ORD_1",
		OrderAmount:   2500,
		OrderCurrency: "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, "2149460581", order.CfOrderID)
	assert.Equal(t, "ACTIVE", order.OrderStatus)
	assert.Equal(t, "session_abc", order.PaymentSessionID)
	assert.NotEmpty(t, order.Raw)
}

func TestGetSubscription_UsesSubscriptionAPIVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subscriptions/cf_sub_9", r.URL.Path)
		assert.Equal(t, "2025-01-01", r.Header.Get("x-api-version"))
		assert.Empty(t, r.Header.Get("x-idempotency-key"))
		_, _ = w.Write([]byte(`{"cf_subscription_id":"cf_sub_9","subscription_id":"SIP_1","subscription_status":"ACTIVE","next_schedule_date":"2025-02-01T00:00:00+05:30"}`))
	})

	sub, err := client.GetSubscription(context.Background(), "cf_sub_9")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", sub.SubscriptionStatus)
	assert.Equal(t, "2025-02-01T00:00:00+05:30", sub.NextScheduleDate)
}

func TestManageSubscription_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/cf_sub_9/manage", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cf_sub_9", body["subscription_id"])
		assert.Equal(t, "PAUSE", body["action"])
		_, _ = w.Write([]byte(`{"subscription_status":"PAUSED"}`))
	})

	raw, err := client.ManageSubscription(context.Background(), "cf_sub_9", ActionPause)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subscription_status":"PAUSED"}`, string(raw))
}

func TestGatewayError_ParsesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Subscription is already cancelled","code":"subscription_invalid","type":"invalid_request_error"}`))
	})

	_, err := client.ManageSubscription(context.Background(), "cf_sub_9", ActionCancel)
	require.Error(t, err)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusBadRequest, ge.StatusCode)
	assert.Equal(t, "Subscription is already cancelled", ge.Message)
	assert.Equal(t, "subscription_invalid", ge.Code)
	assert.True(t, IsAlreadyInState(err, ActionCancel))
	assert.False(t, IsAlreadyInState(err, ActionPause))
}

func TestGatewayError_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<html>not found</html>`))
	})

	_, err := client.GetOrder(context.Background(), "ORD_missing")
	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "gateway request failed with status 404", ge.Message)
	assert.True(t, IsNotFound(err))
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"order_id":"ORD_1","order_status":"PAID"}`))
	})

	order, err := client.GetOrder(context.Background(), "ORD_1")
	require.NoError(t, err)
	assert.Equal(t, "PAID", order.OrderStatus)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetOrder(context.Background(), "ORD_1")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_NoRetryOnClientError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"order_amount invalid"}`))
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{OrderID: "ORD_1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "order_amount invalid")
}

func TestGetOrderPayments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ORD_1/payments", r.URL.Path)
		_, _ = w.Write([]byte(`[{"cf_payment_id":885473,"order_id":"ORD_1","payment_status":"SUCCESS","payment_time":"2025-01-05T10:00:00+05:30","payment_group":"upi","payment_method":{"upi":{"upi_id":"x@bank"}}}]`))
	})

	payments, err := client.GetOrderPayments(context.Background(), "ORD_1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "885473", payments[0].CfPaymentID.String())
	assert.Equal(t, "SUCCESS", payments[0].PaymentStatus)
	assert.JSONEq(t, `{"upi":{"upi_id":"x@bank"}}`, string(payments[0].PaymentMethod))
}
