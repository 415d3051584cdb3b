package db

import (
	"fmt" // Error wrapping

	"crowdfund_ledger/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM query logging
)

// Models lists every table the ledger owns, in dependency order
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Wallet{},
		&domain.WalletTransaction{},
		&domain.FundRequest{},
		&domain.Endorsement{},
		&domain.Donation{},
		&domain.Notification{},
	}
}

// Connect opens a MySQL connection. Driver errors are translated so the
// store can match gorm.ErrDuplicatedKey.
func Connect(dsn string, isProd bool) (*gorm.DB, error) {
	level := logger.Info
	if isProd {
		level = logger.Warn // Only slow queries and errors in production
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.WithField("tables", len(Models())).Info("Migration completed.")
	return nil
}
