package database

import (
	"testing"

	"canteen_manager/constants"
	"canteen_manager/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenInMemory("db_" + uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func counterValue(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var counter model.TokenCounter
	require.NoError(t, db.First(&counter, "name = ?", constants.TOKEN_SEQUENCE).Error)
	return counter.Value
}

func TestMigrateStartsCounterAfterLedger(t *testing.T) {
	db := memoryDB(t)
	assert.Equal(t, 0, counterValue(t, db))

	user := model.User{Name: "Asha", Email: "a@b.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&model.Order{
		UserId:      user.ID,
		Items:       model.OrderLines{},
		TotalAmount: decimal.NewFromInt(10),
		TokenNumber: 41,
		Status:      constants.ORDER_PREPARING,
		PickupTime:  constants.PICKUP_ASAP,
		PaymentRef:  "ref_41",
	}).Error)

	require.NoError(t, Migrate(db))
	assert.Equal(t, 41, counterValue(t, db))

	// migrating again never moves the counter backwards
	require.NoError(t, db.Model(&model.TokenCounter{}).Where("name = ?", constants.TOKEN_SEQUENCE).Update("value", 50).Error)
	require.NoError(t, Migrate(db))
	assert.Equal(t, 50, counterValue(t, db))
}

func TestSeedOwner(t *testing.T) {
	db := memoryDB(t)

	require.NoError(t, SeedOwner(db, ""))
	var count int64
	db.Model(&model.Owner{}).Count(&count)
	assert.Zero(t, count)

	require.NoError(t, SeedOwner(db, "first-key"))
	var owner model.Owner
	require.NoError(t, db.First(&owner).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.MasterKey), []byte("first-key")))
	firstHash := owner.MasterKey

	require.NoError(t, SeedOwner(db, "first-key"))
	owner = model.Owner{}
	require.NoError(t, db.First(&owner).Error)
	assert.Equal(t, firstHash, owner.MasterKey, "unchanged key is not rehashed")

	require.NoError(t, SeedOwner(db, "second-key"))
	db.Model(&model.Owner{}).Count(&count)
	assert.Equal(t, int64(1), count)
	// the row was replaced, so a lookup keyed on the old id would miss
	owner = model.Owner{}
	require.NoError(t, db.First(&owner).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.MasterKey), []byte("second-key")))
}

func TestSeedMenuOnlyFillsEmptyCatalog(t *testing.T) {
	db := memoryDB(t)

	require.NoError(t, SeedMenu(db))
	var items []model.MenuItem
	require.NoError(t, db.Find(&items).Error)
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.NotEmpty(t, item.CategorySlug, item.Name)
		assert.True(t, item.Price.IsPositive(), item.Name)
	}

	require.NoError(t, SeedMenu(db))
	var count int64
	db.Model(&model.MenuItem{}).Count(&count)
	assert.Equal(t, int64(len(items)), count)
}

func TestOrderLinesRoundTripThroughDatabase(t *testing.T) {
	db := memoryDB(t)
	user := model.User{Name: "Asha", Email: "a@b.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	lines := model.OrderLines{
		{MenuItemId: 1, Name: "Dosa", Price: decimal.RequireFromString("60.50"), Quantity: 2, PrepTime: 10},
		{MenuItemId: 2, Name: "Coffee", Price: decimal.NewFromInt(20), Quantity: 1, PrepTime: 3},
	}
	order := model.Order{
		UserId:        user.ID,
		Items:         lines,
		TotalAmount:   lines.Total(),
		TokenNumber:   1,
		Status:        constants.ORDER_PREPARING,
		PickupTime:    constants.PICKUP_ASAP,
		PrepTimeTotal: lines.MaxPrepTime(),
		PaymentRef:    "ref_1",
	}
	require.NoError(t, db.Create(&order).Error)

	var loaded model.Order
	require.NoError(t, db.First(&loaded, order.ID).Error)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Dosa", loaded.Items[0].Name)
	assert.True(t, decimal.RequireFromString("141").Equal(loaded.TotalAmount))
	assert.Equal(t, 10, loaded.PrepTimeTotal)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
