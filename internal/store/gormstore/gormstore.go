// Package gormstore implements store.Store on gorm (MySQL in production).
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is a gorm backed record store. The *gorm.DB must be opened with
// TranslateError enabled so duplicate keys surface as gorm.ErrDuplicatedKey.
type Store struct {
	reader
}

// New wraps db
func New(db *gorm.DB) *Store {
	return &Store{reader{db: db}}
}

// Transaction runs fn inside a database transaction
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&txn{reader{db: gtx}})
	})
}

type reader struct {
	db *gorm.DB
}

func (r reader) first(ctx context.Context, dest any, notFound error, query string, args ...any) error {
	err := r.db.WithContext(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func (r reader) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.first(ctx, &user, domain.ErrUserNotFound, "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r reader) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.first(ctx, &user, domain.ErrUserNotFound, "username = ?", username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r reader) ListUsers(ctx context.Context, page store.Page) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := r.db.WithContext(ctx).Preload("Wallet").
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&users).Error
	return users, total, err
}

func (r reader) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.first(ctx, &wallet, domain.ErrWalletNotFound, "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r reader) transactions(ctx context.Context, filter store.TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.WalletTransaction{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Kind != "" {
		q = q.Where("type = ?", filter.Kind)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	return q
}

func (r reader) ListTransactions(ctx context.Context, filter store.TransactionFilter, page store.Page) ([]domain.WalletTransaction, int64, error) {
	var total int64
	if err := r.transactions(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.WalletTransaction
	err := r.transactions(ctx, filter).
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error
	return rows, total, err
}

func (r reader) SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	return sum(r.transactions(ctx, store.TransactionFilter{UserID: userID}))
}

func (r reader) GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error) {
	var request domain.FundRequest
	if err := r.first(ctx, &request, domain.ErrRequestNotFound, "id = ?", id); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r reader) fundRequests(ctx context.Context, filter store.FundRequestFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.FundRequest{})
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	return q
}

func (r reader) ListFundRequests(ctx context.Context, filter store.FundRequestFilter, page store.Page) ([]domain.FundRequest, int64, error) {
	var total int64
	if err := r.fundRequests(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.FundRequest
	err := r.fundRequests(ctx, filter).
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error
	return rows, total, err
}

func (r reader) HasEndorsed(ctx context.Context, requestID, verifierID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Endorsement{}).
		Where("fund_request_id = ? AND verifier_id = ?", requestID, verifierID).
		Count(&count).Error
	return count > 0, err
}

func (r reader) donations(ctx context.Context, filter store.DonationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Donation{})
	if filter.FundRequestID != "" {
		q = q.Where("fund_request_id = ?", filter.FundRequestID)
	}
	if filter.DonorID != "" {
		q = q.Where("donor_id = ?", filter.DonorID)
	}
	return q
}

func (r reader) ListDonations(ctx context.Context, filter store.DonationFilter, page store.Page) ([]domain.Donation, int64, error) {
	var total int64
	if err := r.donations(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.Donation
	err := r.donations(ctx, filter).
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error
	return rows, total, err
}

func (r reader) SumDonations(ctx context.Context, filter store.DonationFilter) (decimal.Decimal, error) {
	return sum(r.donations(ctx, filter))
}

func (r reader) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.first(ctx, &n, domain.ErrNotificationNotFound, "id = ?", id); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r reader) ListNotifications(ctx context.Context, userID string, page store.Page) ([]domain.Notification, int64, error) {
	q := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	}
	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.Notification
	err := q().Order("created_at desc").Offset(page.Offset()).Limit(page.Size).Find(&rows).Error
	return rows, total, err
}

// sum totals the amount column of q
func sum(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// txn adds the write side on top of a transaction scoped reader
type txn struct {
	reader
}

func (t *txn) create(ctx context.Context, value any, duplicate error) error {
	err := t.db.WithContext(ctx).Create(value).Error
	if duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicate
	}
	return err
}

func (t *txn) CreateUser(ctx context.Context, user *domain.User) error {
	// Omit the association so the wallet goes through CreateWallet.
	err := t.db.WithContext(ctx).Omit("Wallet").Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserExists
	}
	return err
}

func (t *txn) CreateWallet(ctx context.Context, wallet *domain.Wallet) error {
	return t.create(ctx, wallet, store.ErrConflict)
}

func (t *txn) UpdateWallet(ctx context.Context, wallet *domain.Wallet) error {
	res := t.db.WithContext(ctx).Model(&domain.Wallet{}).
		Where("user_id = ? AND version = ?", wallet.UserID, wallet.Version).
		Updates(map[string]any{
			"balance":    wallet.Balance,
			"version":    wallet.Version + 1,
			"updated_at": wallet.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update wallet %s: %w", wallet.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict // stale version
	}
	wallet.Version++
	return nil
}

func (t *txn) AppendTransaction(ctx context.Context, record *domain.WalletTransaction) error {
	return t.create(ctx, record, nil)
}

func (t *txn) CreateFundRequest(ctx context.Context, request *domain.FundRequest) error {
	return t.create(ctx, request, store.ErrConflict)
}

func (t *txn) UpdateFundRequest(ctx context.Context, request *domain.FundRequest) error {
	documents := request.Documents
	if documents == nil {
		documents = []string{}
	}
	encoded, err := json.Marshal(documents) // map updates bypass the json serializer
	if err != nil {
		return fmt.Errorf("encode documents of %s: %w", request.ID, err)
	}
	res := t.db.WithContext(ctx).Model(&domain.FundRequest{ID: request.ID}).
		Where("version = ?", request.Version).
		Updates(map[string]any{
			"current_amount":     request.CurrentAmount,
			"status":             request.Status,
			"is_verified":        request.IsVerified,
			"verification_count": request.VerificationCount,
			"documents":          string(encoded),
			"version":            request.Version + 1,
			"updated_at":         request.UpdatedAt, // ledger clock, not gorm's NowFunc
		})
	if res.Error != nil {
		return fmt.Errorf("update fund request %s: %w", request.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict // someone else committed first
	}
	request.Version++
	return nil
}

func (t *txn) AddEndorsement(ctx context.Context, endorsement *domain.Endorsement) error {
	return t.create(ctx, endorsement, domain.ErrDuplicateEndorsement)
}

func (t *txn) AppendDonation(ctx context.Context, donation *domain.Donation) error {
	return t.create(ctx, donation, nil)
}

func (t *txn) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	return t.create(ctx, notification, nil)
}

func (t *txn) MarkNotificationRead(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
