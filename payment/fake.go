package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Fake is an in-memory gateway for local runs and tests. Orders start ACTIVE
// and are settled with MarkPaid.
type Fake struct {
	mu     sync.Mutex
	orders map[string]Order

	// CreateErr and FetchErr, when set, are returned by the next calls.
	CreateErr error
	FetchErr  error
	Creates   int
	Fetches   int
}

func NewFake() *Fake {
	return &Fake{orders: map[string]Order{}}
}

func (f *Fake) Environment() string {
	return "sandbox"
}

func (f *Fake) CreateOrder(_ context.Context, req CreateOrderRequest) (CreateOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Creates++
	if f.CreateErr != nil {
		return CreateOrderResult{}, f.CreateErr
	}
	if _, exists := f.orders[req.OrderId]; exists {
		return CreateOrderResult{}, fmt.Errorf("%w: duplicate order_id %s", ErrRejected, req.OrderId)
	}

	gatewayId := uuid.NewString()
	f.orders[req.OrderId] = Order{
		GatewayOrderId: gatewayId,
		OrderId:        req.OrderId,
		Amount:         req.Amount,
		Status:         StatusActive,
		CustomerId:     req.Customer.Id,
	}
	return CreateOrderResult{
		GatewayOrderId:   gatewayId,
		OrderId:          req.OrderId,
		PaymentSessionId: "session_" + gatewayId,
	}, nil
}

func (f *Fake) FetchOrder(_ context.Context, orderId string) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fetches++
	if f.FetchErr != nil {
		return Order{}, f.FetchErr
	}
	o, ok := f.orders[orderId]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

// MarkPaid settles an order as if the customer completed checkout.
func (f *Fake) MarkPaid(orderId string) {
	f.SetStatus(orderId, StatusPaid)
}

func (f *Fake) SetStatus(orderId, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderId]; ok {
		o.Status = status
		f.orders[orderId] = o
	}
}

// Put registers an order directly, bypassing CreateOrder.
func (f *Fake) Put(o Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.OrderId] = o
}
