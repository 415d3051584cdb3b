package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a wallet movement
type TransactionKind string

// Transaction kinds
const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindDonation   TransactionKind = "donation"
)

// Valid reports whether k is one of the known kinds
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDonation:
		return true
	}
	return false
}

// WalletTransaction Model, append-only. Debits carry a negative amount so that
// the sum over a user's rows equals the wallet balance.
type WalletTransaction struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`                   // Primary key (UUID)
	UserID        string          `gorm:"size:36;index;not null" json:"user_id"`          // Wallet owner
	Kind          TransactionKind `gorm:"column:type;size:16;index;not null" json:"type"` // deposit, withdrawal, donation
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`      // Signed amount
	Description   string          `gorm:"size:255" json:"description"`                    // Human readable description
	FundRequestID *string         `gorm:"size:36;index" json:"fund_request_id,omitempty"` // Set for donations
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                        // Creation time
}
