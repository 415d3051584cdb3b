package main

import (
	"context" // Seeding context
	"os"      // Admin seed credentials

	"crowdfund_ledger/internal/cache"           // Snapshot cache for the seeding service
	"crowdfund_ledger/internal/config"          // Configuration
	"crowdfund_ledger/internal/db"              // Database connection and migration
	"crowdfund_ledger/internal/domain"          // Roles
	"crowdfund_ledger/internal/ledger"          // Account registration
	"crowdfund_ledger/internal/store/gormstore" // MySQL store

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Main entry point for migration. Setting ADMIN_USERNAME and ADMIN_PASSWORD
// also seeds an admin account.
func main() {
	cfg := config.LoadConfig() // Load configuration

	conn, err := db.Connect(cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatal(err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatal(err)
	}

	username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("failed to hash admin password: %v", err)
	}
	svc := ledger.New(gormstore.New(conn), cache.NewMemory(cfg.CacheTTL, cfg.CacheTTL), ledger.Options{Logger: logrus.StandardLogger()})
	if _, err := svc.RegisterUser(context.Background(), username, string(hash), domain.RoleAdmin); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
}
