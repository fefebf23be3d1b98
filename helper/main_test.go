package helper

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	u := model.User{Name: "Student " + email, Email: email, Password: hash}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createMenuItem(t *testing.T, db *gorm.DB, name string, price int64, stock, prep int) model.MenuItem {
	t.Helper()
	m := model.MenuItem{
		Name:         name,
		Price:        decimal.NewFromInt(price),
		Category:     constants.DEFAULT_CATEGORY,
		CategorySlug: "general",
		Stock:        stock,
		PrepTime:     prep,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// insertOrder writes a ledger row directly, bypassing checkout.
func insertOrder(t *testing.T, db *gorm.DB, user model.User, token int, total int64, status string, createdAt time.Time) model.Order {
	t.Helper()
	o := model.Order{
		UserId:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		Items:         model.OrderLines{{MenuItemId: 1, Name: "Item", Price: decimal.NewFromInt(total), Quantity: 1, PrepTime: 10}},
		TotalAmount:   decimal.NewFromInt(total),
		TokenNumber:   token,
		Status:        status,
		PickupTime:    constants.PICKUP_ASAP,
		PrepTimeTotal: 10,
		PaymentRef:    fmt.Sprintf("ref_%d", token),
		CreatedAt:     createdAt.UTC(),
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func claimFor(u model.User) model.TokenClaim {
	return model.TokenClaim{UserId: u.ID, Email: u.Email, Name: u.Name, Role: constants.ROLE_STUDENT}
}
