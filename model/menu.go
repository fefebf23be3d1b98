package model

import "github.com/shopspring/decimal"

type MenuItem struct {
	DTO
	Name         string          `gorm:"not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category     string          `gorm:"not null;default:General" json:"category"`
	CategorySlug string          `gorm:"index" json:"categorySlug"`
	Stock        int             `gorm:"not null" json:"stock"`
	PrepTime     int             `gorm:"not null" json:"prepTime"`
}

// Available reports whether customers may order the item at all.
func (m MenuItem) Available() bool {
	return m.Stock > 0
}

type MenuItemView struct {
	MenuItem
	Available bool `json:"available"`
	Instant   bool `json:"instant"`
}

func NewMenuItemView(m MenuItem) MenuItemView {
	return MenuItemView{MenuItem: m, Available: m.Available(), Instant: m.PrepTime == 0}
}

type CreateMenuItemInput struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" validate:"omitempty,max=60"`
	Stock    *int            `json:"stock" validate:"omitempty,gte=0"`
	PrepTime *int            `json:"prepTime" validate:"omitempty,gte=0,lte=240"`
}

type UpdateStockInput struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}
