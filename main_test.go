package main

import (
	"testing"

	"canteen_manager/config"
	"canteen_manager/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateway(t *testing.T) {
	gw, err := newGateway(&config.Configuration{PaymentGateway: "fake", AppEnv: "development"})
	require.NoError(t, err)
	assert.IsType(t, &payment.Fake{}, gw)

	_, err = newGateway(&config.Configuration{PaymentGateway: "FAKE", AppEnv: "production"})
	assert.Error(t, err)

	gw, err = newGateway(&config.Configuration{PaymentGateway: "cashfree", CashfreeEnv: "sandbox"})
	require.NoError(t, err)
	assert.IsType(t, &payment.Cashfree{}, gw)
	assert.Equal(t, "sandbox", gw.Environment())
}
