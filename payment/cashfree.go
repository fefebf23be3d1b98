package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"canteen_manager/logger"

	"github.com/shopspring/decimal"
)

type CashfreeConfig struct {
	BaseURL     string
	AppId       string
	SecretKey   string
	APIVersion  string
	Environment string
	Timeout     time.Duration
	// FetchRetries is how many extra attempts a status poll gets on
	// ErrUnavailable. Order creation is never retried.
	FetchRetries int
	RetryWait    time.Duration
}

type Cashfree struct {
	Config CashfreeConfig
	Client *http.Client
}

func NewCashfree(cfg CashfreeConfig) *Cashfree {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 300 * time.Millisecond
	}
	return &Cashfree{
		Config: cfg,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
}

type cashfreeOrderRequest struct {
	OrderId         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails Customer        `json:"customer_details"`
	OrderMeta       struct {
		ReturnURL string `json:"return_url,omitempty"`
	} `json:"order_meta"`
}

type cashfreeOrder struct {
	CfOrderId        json.Number     `json:"cf_order_id"`
	OrderId          string          `json:"order_id"`
	OrderAmount      decimal.Decimal `json:"order_amount"`
	OrderStatus      string          `json:"order_status"`
	PaymentSessionId string          `json:"payment_session_id"`
	CustomerDetails  Customer        `json:"customer_details"`
}

type cashfreeError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

func (g *Cashfree) Environment() string {
	return g.Config.Environment
}

func (g *Cashfree) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error) {
	body := cashfreeOrderRequest{
		OrderId:         req.OrderId,
		OrderAmount:     req.Amount.InexactFloat64(),
		OrderCurrency:   req.Currency,
		CustomerDetails: req.Customer,
	}
	if body.OrderCurrency == "" {
		body.OrderCurrency = "INR"
	}
	body.OrderMeta.ReturnURL = req.ReturnURL

	var out cashfreeOrder
	if err := g.do(ctx, http.MethodPost, "/orders", body, &out); err != nil {
		return CreateOrderResult{}, err
	}
	if out.PaymentSessionId == "" {
		return CreateOrderResult{}, fmt.Errorf("%w: empty payment session", ErrUnavailable)
	}
	return CreateOrderResult{
		GatewayOrderId:   out.CfOrderId.String(),
		OrderId:          out.OrderId,
		PaymentSessionId: out.PaymentSessionId,
	}, nil
}

func (g *Cashfree) FetchOrder(ctx context.Context, orderId string) (Order, error) {
	var out cashfreeOrder
	path := "/orders/" + url.PathEscape(orderId)

	var err error
	for attempt := 0; attempt <= g.Config.FetchRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(float64(g.Config.RetryWait) * math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return Order{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}
		err = g.do(ctx, http.MethodGet, path, nil, &out)
		if err == nil || !isUnavailable(err) {
			break
		}
		logger.WithModule("payment").WithError(err).WithField("attempt", attempt+1).Warn("gateway status poll failed")
	}
	if err != nil {
		return Order{}, err
	}

	return Order{
		GatewayOrderId: out.CfOrderId.String(),
		OrderId:        out.OrderId,
		Amount:         out.OrderAmount,
		Status:         strings.ToUpper(out.OrderStatus),
		CustomerId:     out.CustomerDetails.Id,
	}, nil
}

func (g *Cashfree) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode gateway request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(g.Config.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", g.Config.AppId)
	req.Header.Set("x-client-secret", g.Config.SecretKey)
	req.Header.Set("x-api-version", g.Config.APIVersion)

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrOrderNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var e cashfreeError
		_ = json.Unmarshal(payload, &e)
		return fmt.Errorf("%w: %s %s", ErrRejected, e.Code, e.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrUnavailable, err)
	}
	return nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
