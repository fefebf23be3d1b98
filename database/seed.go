package database

import (
	"errors"
	"fmt"

	"canteen_manager/constants"
	"canteen_manager/logger"
	"canteen_manager/model"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOwner stores the bcrypt hash of masterKey as the only admin principal.
// An unchanged key is left alone.
func SeedOwner(db *gorm.DB, masterKey string) error {
	if masterKey == "" {
		logger.WithModule("database").Warn("ADMIN_MASTER_KEY not set, admin login disabled")
		return nil
	}

	var owner model.Owner
	err := db.First(&owner).Error
	if err == nil && bcrypt.CompareHashAndPassword([]byte(owner.MasterKey), []byte(masterKey)) == nil {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed owner: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(masterKey), 10)
	if err != nil {
		return fmt.Errorf("seed owner: hash: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Owner{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Owner{MasterKey: string(hash)}).Error
	})
}

// SeedMenu adds a starter catalog to an empty menu table.
func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []model.MenuItem{
		{Name: "Masala Dosa", Price: decimal.NewFromInt(60), Category: "Breakfast", Stock: 30, PrepTime: 10},
		{Name: "Veg Biryani", Price: decimal.NewFromInt(120), Category: "Meals", Stock: 20, PrepTime: 15},
		{Name: "Filter Coffee", Price: decimal.NewFromInt(20), Category: "Beverages", Stock: 50, PrepTime: 3},
		{Name: "Samosa", Price: decimal.NewFromInt(15), Category: "Snacks", Stock: 40, PrepTime: 0},
		{Name: "Bottled Water", Price: decimal.NewFromInt(20), Category: constants.DEFAULT_CATEGORY, Stock: 100, PrepTime: 0},
	}
	for i := range items {
		items[i].CategorySlug = slug.Make(items[i].Category)
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	logger.WithModule("database").WithField("items", len(items)).Info("seeded menu")
	return nil
}
