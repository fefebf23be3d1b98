package handler

import (
	"time"

	"canteen_manager/config"
	"canteen_manager/database"
	"canteen_manager/helper"
	"canteen_manager/payment"
)

// PaymentGateway is set at boot; tests swap in payment.Fake.
var PaymentGateway payment.Gateway

// Now is the handler clock.
var Now = time.Now

func checkout() *helper.Checkout {
	cfg := config.Get()
	return &helper.Checkout{
		DB:            database.DB,
		Gateway:       PaymentGateway,
		ReturnURL:     cfg.CashfreeReturnURL,
		CustomerPhone: cfg.CustomerPhone,
		Now:           Now,
	}
}
