package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent records a gateway order opened for a priced cart. The ledger
// row is only written once the gateway reports it paid.
type PaymentIntent struct {
	DTO
	Reference     string          `gorm:"uniqueIndex;not null" json:"reference"`
	UserId        uint            `gorm:"index;not null" json:"userId"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Items         OrderLines      `gorm:"type:jsonb;not null" json:"items"`
	PrepTimeTotal int             `gorm:"not null" json:"prepTimeTotal"`
	SessionId     string          `json:"-"`
	Status        string          `gorm:"not null;default:PENDING" json:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

type CartItem struct {
	MenuItemId uint            `json:"menuItemId" validate:"required,gt=0"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"required,gte=1,lte=50"`
}

type CreatePaymentInput struct {
	Items []CartItem `json:"items" validate:"required,min=1,max=50,dive"`
}

type CreatePaymentOutput struct {
	PaymentSessionId string          `json:"paymentSessionId"`
	OrderId          string          `json:"orderId"`
	Amount           decimal.Decimal `json:"amount"`
	Environment      string          `json:"environment"`
}

type VerifyPaymentInput struct {
	OrderId       string     `json:"orderId" validate:"required,max=64"`
	Items         []CartItem `json:"items" validate:"omitempty,max=50,dive"`
	PickupTime    string     `json:"pickupTime" validate:"omitempty,max=5"`
	PrepTimeTotal int        `json:"prepTimeTotal"`
}

type RevenueSummary struct {
	TodayRevenue     decimal.Decimal `json:"todayRevenue"`
	TodayOrdersCount int64           `json:"todayOrdersCount"`
	PeakHour         string          `json:"peakHour"`
	YesterdayRevenue decimal.Decimal `json:"yesterdayRevenue"`
	RevenueGrowth    float64         `json:"revenueGrowth"`
}
