package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCashfree(t *testing.T, h http.HandlerFunc) *Cashfree {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCashfree(CashfreeConfig{
		BaseURL:      srv.URL,
		AppId:        "app",
		SecretKey:    "secret",
		APIVersion:   "2022-09-01",
		Environment:  "sandbox",
		FetchRetries: 2,
		RetryWait:    time.Millisecond,
	})
}

func TestCashfreeCreateOrder(t *testing.T) {
	gw := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "app", r.Header.Get("x-client-id"))
		assert.Equal(t, "secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2022-09-01", r.Header.Get("x-api-version"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ORDER_1", body["order_id"])
		assert.Equal(t, 200.5, body["order_amount"])
		assert.Equal(t, "INR", body["order_currency"])
		customer := body["customer_details"].(map[string]interface{})
		assert.Equal(t, "user_7", customer["customer_id"])

		_, _ = w.Write([]byte(`{"cf_order_id": 42, "order_id": "ORDER_1", "payment_session_id": "session_abc", "order_status": "ACTIVE", "order_amount": 200.5}`))
	})

	res, err := gw.CreateOrder(context.Background(), CreateOrderRequest{
		OrderId:  "ORDER_1",
		Amount:   decimal.RequireFromString("200.50"),
		Customer: Customer{Id: "user_7", Phone: "9999999999"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", res.GatewayOrderId)
	assert.Equal(t, "session_abc", res.PaymentSessionId)
	assert.Equal(t, "sandbox", gw.Environment())
}

func TestCashfreeCreateOrderErrors(t *testing.T) {
	rejected := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "order_amount invalid", "code": "order_amount_invalid", "type": "invalid_request_error"}`))
	})
	_, err := rejected.CreateOrder(context.Background(), CreateOrderRequest{OrderId: "X", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "order_amount_invalid")

	var calls int32
	down := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = down.CreateOrder(context.Background(), CreateOrderRequest{OrderId: "X", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "order creation is never retried")

	noSession := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cf_order_id": 1, "order_id": "X"}`))
	})
	_, err = noSession.CreateOrder(context.Background(), CreateOrderRequest{OrderId: "X", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCashfreeFetchOrder(t *testing.T) {
	gw := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/ORDER_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"cf_order_id": 42, "order_id": "ORDER_1", "order_status": "paid", "order_amount": 200, "customer_details": {"customer_id": "user_7"}}`))
	})

	o, err := gw.FetchOrder(context.Background(), "ORDER_1")
	require.NoError(t, err)
	assert.True(t, o.Paid())
	assert.True(t, decimal.NewFromInt(200).Equal(o.Amount))
	assert.Equal(t, "user_7", o.CustomerId)
}

func TestCashfreeFetchOrderRetriesOutages(t *testing.T) {
	var calls int32
	gw := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"cf_order_id": 42, "order_id": "ORDER_1", "order_status": "ACTIVE", "order_amount": 200}`))
	})

	o, err := gw.FetchOrder(context.Background(), "ORDER_1")
	require.NoError(t, err)
	assert.False(t, o.Paid())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCashfreeFetchOrderGivesUp(t *testing.T) {
	var calls int32
	gw := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gw.FetchOrder(context.Background(), "ORDER_1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCashfreeFetchOrderNotFound(t *testing.T) {
	var calls int32
	gw := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := gw.FetchOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFakeGateway(t *testing.T) {
	gw := NewFake()
	ctx := context.Background()

	res, err := gw.CreateOrder(ctx, CreateOrderRequest{OrderId: "A", Amount: decimal.NewFromInt(50), Customer: Customer{Id: "user_1"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.PaymentSessionId)

	_, err = gw.CreateOrder(ctx, CreateOrderRequest{OrderId: "A", Amount: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, ErrRejected)

	o, err := gw.FetchOrder(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, o.Status)

	gw.MarkPaid("A")
	o, err = gw.FetchOrder(ctx, "A")
	require.NoError(t, err)
	assert.True(t, o.Paid())
	assert.Equal(t, "user_1", o.CustomerId)

	_, err = gw.FetchOrder(ctx, "B")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 2, gw.Creates)
	assert.Equal(t, 3, gw.Fetches)
}
