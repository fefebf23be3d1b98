package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a frozen copy of a menu item at purchase time.
type OrderLine struct {
	MenuItemId uint            `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	PrepTime   int             `json:"prepTime"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderLines is stored as a single JSON column.
type OrderLines []OrderLine

func (o OrderLines) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OrderLines) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*o = OrderLines{}
		return nil
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("unsupported scan type for OrderLines: %T", value)
	}
}

func (o OrderLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o {
		total = total.Add(l.Subtotal())
	}
	return total
}

// MaxPrepTime is the order's contribution to the kitchen queue.
func (o OrderLines) MaxPrepTime() int {
	longest := 0
	for _, l := range o {
		if l.PrepTime > longest {
			longest = l.PrepTime
		}
	}
	return longest
}

type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserId           uint            `gorm:"index;not null" json:"userId"`
	UserName         string          `json:"userName"`
	UserEmail        string          `json:"userEmail"`
	Items            OrderLines      `gorm:"type:jsonb;not null" json:"items"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"totalAmount"`
	TokenNumber      int             `gorm:"uniqueIndex;not null" json:"tokenNumber"`
	Status           string          `gorm:"index;not null;default:Preparing" json:"status"`
	PickupTime       string          `gorm:"not null;default:ASAP" json:"pickupTime"`
	PrepTimeTotal    int             `gorm:"not null" json:"prepTimeTotal"`
	PaymentRef       string          `gorm:"uniqueIndex;not null" json:"paymentRef"`
	GatewayPaymentId string          `json:"gatewayPaymentId"`
	CreatedAt        time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	ReadyAt          *time.Time      `json:"readyAt,omitempty"`
	PickedUpAt       *time.Time      `json:"pickedUpAt,omitempty"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:RESTRICT" json:"-"`
}

// TokenCounter backs gap-free token allocation; Value is the last token issued.
type TokenCounter struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value int    `gorm:"not null;default:0"`
}

type OrderETA struct {
	QueuePosition    int       `json:"queuePosition"`
	EarlierQueueLoad int       `json:"earlierQueueLoad"`
	PredictedReadyAt time.Time `json:"predictedReadyAt"`
	RemainingMinutes int       `json:"remainingMinutes"`
	Urgency          string    `json:"urgency"`
}

type OrderView struct {
	Order
	ETA OrderETA `json:"eta"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type OrderReceipt struct {
	Order  Order  `json:"order"`
	QRCode string `json:"qrCode"`
}

type NowServing struct {
	NowServing interface{} `json:"nowServing"`
}
