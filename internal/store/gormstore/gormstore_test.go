package gormstore

import (
	"context"
	"testing"
	"time"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return New(db), mock
}

func TestUpdateWalletStaleVersionConflicts(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	wallet := &domain.Wallet{UserID: "u1", Balance: decimal.NewFromInt(40), Version: 3}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.Transaction(ctx, func(tx store.Tx) error {
		return tx.UpdateWallet(ctx, wallet)
	})
	require.ErrorIs(t, err, store.ErrConflict)
	assert.EqualValues(t, 3, wallet.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWalletBumpsVersion(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	wallet := &domain.Wallet{UserID: "u1", Balance: decimal.NewFromInt(40), Version: 3}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.Transaction(ctx, func(tx store.Tx) error {
		return tx.UpdateWallet(ctx, wallet)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, wallet.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFundRequestStaleVersionConflicts(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	request := &domain.FundRequest{ID: "r1", Status: domain.StatusActive, Documents: []string{}, Version: 7}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `fund_requests` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.Transaction(ctx, func(tx store.Tx) error {
		return tx.UpdateFundRequest(ctx, request)
	})
	require.ErrorIs(t, err, store.ErrConflict)
	assert.EqualValues(t, 7, request.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFundRequestPersistsLedgerClock(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	request := &domain.FundRequest{
		ID:                "r1",
		CurrentAmount:     decimal.NewFromInt(60),
		Status:            domain.StatusCompleted,
		IsVerified:        true,
		VerificationCount: 3,
		Documents:         []string{"https://files.example.org/a.pdf"},
		Version:           7,
		UpdatedAt:         at,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `fund_requests` SET").
		WithArgs(
			decimal.NewFromInt(60),
			`["https://files.example.org/a.pdf"]`,
			true,
			"completed",
			at,
			3,
			int64(8),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.Transaction(ctx, func(tx store.Tx) error {
		return tx.UpdateFundRequest(ctx, request)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, request.Version)
	assert.Equal(t, at, request.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFundRequestNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `fund_requests`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := st.GetFundRequest(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrRequestNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateEndorsementIsTranslated(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `endorsements`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := st.Transaction(ctx, func(tx store.Tx) error {
		return tx.AddEndorsement(ctx, &domain.Endorsement{ID: "e1", FundRequestID: "r1", VerifierID: "v1"})
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEndorsement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumTransactions(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT SUM\\(amount\\) FROM `wallet_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"SUM(amount)"}).AddRow("42.50"))
	mock.ExpectQuery("SELECT SUM\\(amount\\) FROM `wallet_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"SUM(amount)"}).AddRow(nil))

	total, err := st.SumTransactions(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("42.50").Equal(total))

	total, err = st.SumTransactions(context.Background(), "u2")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
