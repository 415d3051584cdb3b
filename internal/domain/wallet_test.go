package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidAmount(t *testing.T) {
	for _, s := range []string{"0.01", "1", "10.5", "999999.99"} {
		assert.True(t, ValidAmount(d(s)), s)
	}
	for _, s := range []string{"0", "-1", "-0.01", "1.001", "0.005"} {
		assert.False(t, ValidAmount(d(s)), s)
	}
}

func TestWalletMovementsMatchRecords(t *testing.T) {
	w := NewWallet("u1", now)
	dep, err := w.Deposit(d("100"), "card", now)
	require.NoError(t, err)
	assert.Equal(t, KindDeposit, dep.Kind)
	assert.Equal(t, "Deposit via card", dep.Description)

	wd, err := w.Withdraw(d("30.25"), now)
	require.NoError(t, err)
	assert.Equal(t, KindWithdrawal, wd.Kind)
	assert.True(t, d("-30.25").Equal(wd.Amount))

	r := &FundRequest{ID: "r1", Title: "Rent"}
	don, err := w.DebitForDonation(d("9.75"), r, now)
	require.NoError(t, err)
	assert.Equal(t, KindDonation, don.Kind)
	require.NotNil(t, don.FundRequestID)
	assert.Equal(t, "r1", *don.FundRequestID)

	sum := dep.Amount.Add(wd.Amount).Add(don.Amount)
	assert.True(t, sum.Equal(w.Balance))
	assert.True(t, d("60").Equal(w.Balance))
	for _, rec := range []*WalletTransaction{dep, wd, don} {
		assert.Equal(t, "u1", rec.UserID)
		assert.NotEmpty(t, rec.ID)
	}
}

func TestWalletRejectsWithoutChanging(t *testing.T) {
	w := NewWallet("u1", now)
	_, err := w.Deposit(d("50"), "", now)
	require.NoError(t, err)

	_, err = w.Withdraw(d("50.01"), now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = w.DebitForDonation(d("51"), &FundRequest{ID: "r"}, now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = w.Deposit(d("-1"), "", now)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = w.Withdraw(d("0"), now)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.True(t, d("50").Equal(w.Balance))
}

func TestKindLookup(t *testing.T) {
	assert.Equal(t, "insufficient_funds", Kind(ErrInsufficientFunds))
	assert.Equal(t, "invalid_input", Kind(fmtWrap(ErrInvalidInput)))
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "", Kind(assert.AnError))
	assert.True(t, KindDonation.Valid())
	assert.False(t, TransactionKind("refund").Valid())
}
