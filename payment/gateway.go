// Package payment talks to the hosted-checkout payment gateway.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

const (
	StatusActive  = "ACTIVE"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

var (
	// ErrUnavailable means the gateway could not be reached or failed on its side.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrOrderNotFound means the gateway has no order with that id.
	ErrOrderNotFound = errors.New("payment gateway order not found")
	// ErrRejected means the gateway refused the request.
	ErrRejected = errors.New("payment gateway rejected request")
)

type Customer struct {
	Id    string `json:"customer_id"`
	Email string `json:"customer_email,omitempty"`
	Name  string `json:"customer_name,omitempty"`
	Phone string `json:"customer_phone,omitempty"`
}

type CreateOrderRequest struct {
	OrderId   string
	Amount    decimal.Decimal
	Currency  string
	Customer  Customer
	ReturnURL string
}

type CreateOrderResult struct {
	GatewayOrderId   string
	OrderId          string
	PaymentSessionId string
}

// Order is the gateway's authoritative view of a payment order.
type Order struct {
	GatewayOrderId string
	OrderId        string
	Amount         decimal.Decimal
	Status         string
	CustomerId     string
}

func (o Order) Paid() bool {
	return o.Status == StatusPaid
}

type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error)
	FetchOrder(ctx context.Context, orderId string) (Order, error)
	Environment() string
}
