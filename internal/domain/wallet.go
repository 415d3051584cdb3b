package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet Model
//
// Balance only moves through the methods below, each of which returns the
// WalletTransaction that must be persisted in the same commit.
type Wallet struct {
	UserID    string          `gorm:"primaryKey;size:36" json:"user_id"`                    // Owner, also the primary key
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Wallet balance
	Version   int64           `gorm:"not null;default:0" json:"version"`                    // Optimistic lock counter
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet returns an empty wallet for userID
func NewWallet(userID string, at time.Time) *Wallet {
	return &Wallet{UserID: userID, Balance: decimal.Zero, CreatedAt: at, UpdatedAt: at}
}

// Deposit credits amount and returns the matching deposit record
func (w *Wallet) Deposit(amount decimal.Decimal, method string, at time.Time) (*WalletTransaction, error) {
	if !ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	description := "Deposit"
	if method != "" {
		description = "Deposit via " + method
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = at
	return w.record(KindDeposit, amount, description, nil, at), nil
}

// Withdraw debits amount and returns the matching withdrawal record
func (w *Wallet) Withdraw(amount decimal.Decimal, at time.Time) (*WalletTransaction, error) {
	if err := w.debit(amount); err != nil {
		return nil, err
	}
	w.UpdatedAt = at
	return w.record(KindWithdrawal, amount.Neg(), "Withdrawal to bank account", nil, at), nil
}

// DebitForDonation debits amount towards request and returns the donation record
func (w *Wallet) DebitForDonation(amount decimal.Decimal, request *FundRequest, at time.Time) (*WalletTransaction, error) {
	if err := w.debit(amount); err != nil {
		return nil, err
	}
	w.UpdatedAt = at
	requestID := request.ID
	description := fmt.Sprintf("Donation to fund request %q", request.Title)
	return w.record(KindDonation, amount.Neg(), description, &requestID, at), nil
}

func (w *Wallet) debit(amount decimal.Decimal) error {
	if !ValidAmount(amount) {
		return ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

func (w *Wallet) record(kind TransactionKind, amount decimal.Decimal, description string, requestID *string, at time.Time) *WalletTransaction {
	return &WalletTransaction{
		ID:            uuid.NewString(),
		UserID:        w.UserID,
		Kind:          kind,
		Amount:        amount,
		Description:   description,
		FundRequestID: requestID,
		CreatedAt:     at,
	}
}
