package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices are rendered as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type TokenData struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// TokenClaim is what a session credential says about its bearer.
type TokenClaim struct {
	UserId uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (t TokenClaim) IsAdmin() bool {
	return t.Role == "admin"
}

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
