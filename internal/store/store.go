// Package store defines the record store the ledger persists through.
//
// Wallets and fund requests are versioned aggregates: Update* calls succeed
// only if the stored version still equals the version that was read, and
// bump it on success. A stale write makes the surrounding transaction fail
// with ErrConflict so the caller can re-read and retry.
package store

import (
	"context"
	"errors"
	"time"

	"crowdfund_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrConflict is returned when an optimistic version check fails
var ErrConflict = errors.New("store: version conflict")

// Page selects a window of a newest-first listing
type Page struct {
	Number int
	Size   int
}

// Paging limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewPage clamps number and size into usable values
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset of the first row of the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages for total rows
func (p Page) TotalPages(total int64) int {
	if p.Size == 0 {
		return 0
	}
	return (int(total) + p.Size - 1) / p.Size
}

// TransactionFilter narrows wallet transaction listings. Zero fields match everything.
type TransactionFilter struct {
	UserID string
	Kind   domain.TransactionKind
	From   *time.Time
	To     *time.Time
}

// FundRequestFilter narrows fund request listings. Zero fields match everything.
type FundRequestFilter struct {
	OwnerID  string
	Status   domain.Status
	Category domain.Category
}

// DonationFilter narrows donation listings. Zero fields match everything.
type DonationFilter struct {
	FundRequestID string
	DonorID       string
}

// Reader is the read side shared by the store and its transactions
type Reader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, page Page) ([]domain.User, int64, error)

	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, page Page) ([]domain.WalletTransaction, int64, error)
	SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error)

	GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error)
	ListFundRequests(ctx context.Context, filter FundRequestFilter, page Page) ([]domain.FundRequest, int64, error)
	HasEndorsed(ctx context.Context, requestID, verifierID string) (bool, error)

	ListDonations(ctx context.Context, filter DonationFilter, page Page) ([]domain.Donation, int64, error)
	SumDonations(ctx context.Context, filter DonationFilter) (decimal.Decimal, error)

	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID string, page Page) ([]domain.Notification, int64, error)
}

// Tx is a unit of work. Nothing it writes is visible to others until the
// enclosing Transaction returns nil.
type Tx interface {
	Reader

	CreateUser(ctx context.Context, user *domain.User) error
	CreateWallet(ctx context.Context, wallet *domain.Wallet) error
	UpdateWallet(ctx context.Context, wallet *domain.Wallet) error
	AppendTransaction(ctx context.Context, record *domain.WalletTransaction) error

	CreateFundRequest(ctx context.Context, request *domain.FundRequest) error
	UpdateFundRequest(ctx context.Context, request *domain.FundRequest) error
	AddEndorsement(ctx context.Context, endorsement *domain.Endorsement) error
	AppendDonation(ctx context.Context, donation *domain.Donation) error

	CreateNotification(ctx context.Context, notification *domain.Notification) error
	MarkNotificationRead(ctx context.Context, id string) error
}

// Store is a durable record store with atomic multi-record transactions
type Store interface {
	Reader
	// Transaction runs fn in a single atomic commit. Any error from fn, or
	// ErrConflict from the commit itself, rolls everything back.
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
