package database

import (
	"fmt"
	"time"

	"canteen_manager/config"
	"canteen_manager/constants"
	"canteen_manager/logger"
	"canteen_manager/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", driver)
	}
}

// Open connects without touching the global handle.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		// timestamps are stored in UTC so day-range comparisons agree on both drivers
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer at a time; transactions queue on the pool instead of failing with SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// ConnectDB opens the configured database, migrates it and sets DB.
func ConnectDB(cfg *config.Configuration) error {
	db, err := Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	logger.WithModule("database").WithField("driver", cfg.DBDriver).Info("connection opened to database")

	if err := Migrate(db); err != nil {
		return err
	}
	logger.WithModule("database").Info("database migrated")

	DB = db
	return nil
}

// Migrate creates the schema and makes sure the token counter exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Owner{},
		&model.MenuItem{},
		&model.PaymentIntent{},
		&model.Order{},
		&model.TokenCounter{},
	); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return ensureTokenCounter(db)
}

// ensureTokenCounter starts the sequence after the highest token already in
// the ledger, so a database created before the counter existed stays monotonic.
func ensureTokenCounter(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var maxToken int
		if err := tx.Model(&model.Order{}).Select("COALESCE(MAX(token_number), 0)").Scan(&maxToken).Error; err != nil {
			return fmt.Errorf("database: read max token: %w", err)
		}

		counter := model.TokenCounter{Name: constants.TOKEN_SEQUENCE}
		if err := tx.Where(model.TokenCounter{Name: constants.TOKEN_SEQUENCE}).FirstOrCreate(&counter).Error; err != nil {
			return fmt.Errorf("database: token counter: %w", err)
		}
		if counter.Value < maxToken {
			return tx.Model(&model.TokenCounter{}).Where("name = ?", constants.TOKEN_SEQUENCE).Update("value", maxToken).Error
		}
		return nil
	})
}

// OpenInMemory returns a migrated private sqlite database, for tests and demos.
func OpenInMemory(name string) (*gorm.DB, error) {
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
