package ledger

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"crowdfund_ledger/internal/cache"
	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"
	"crowdfund_ledger/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// tickingClock advances one second per call so listings have a stable order
func tickingClock() func() time.Time {
	var n atomic.Int64
	return func() time.Time { return epoch.Add(time.Duration(n.Add(1)) * time.Second) }
}

func newTestService(t *testing.T, opts Options) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	if opts.Clock == nil {
		opts.Clock = tickingClock()
	}
	return New(st, cache.NewMemory(time.Minute, time.Minute), opts), st
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func register(t *testing.T, svc *Service, name string) string {
	t.Helper()
	u, err := svc.RegisterUser(context.Background(), name, "hash", "")
	require.NoError(t, err)
	return u.ID
}

func fundedUser(t *testing.T, svc *Service, name, balance string) string {
	t.Helper()
	id := register(t, svc, name)
	if b := money(balance); b.IsPositive() {
		_, err := svc.Deposit(context.Background(), id, b, "card")
		require.NoError(t, err)
	}
	return id
}

func openRequest(t *testing.T, svc *Service, ownerID, target string) *domain.FundRequest {
	t.Helper()
	r, err := svc.CreateFundRequest(context.Background(), ownerID, domain.FundRequestDraft{
		Title:        "Emergency surgery",
		Description:  "Hospital bill",
		TargetAmount: money(target),
		Category:     domain.CategoryMedical,
		Urgency:      domain.UrgencyCritical,
	})
	require.NoError(t, err)
	return r
}

func balanceOf(t *testing.T, st store.Store, userID string) decimal.Decimal {
	t.Helper()
	w, err := st.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

func requireBalanced(t *testing.T, svc *Service, userID string) {
	t.Helper()
	rec, err := svc.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.Truef(t, rec.Balanced, "balance %s != ledger %s", rec.Balance, rec.Ledger)
}

// conflictStore fails every commit with a version conflict
type conflictStore struct {
	*memory.Store
	calls atomic.Int32
}

func (c *conflictStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	c.calls.Add(1)
	return store.ErrConflict
}

func newMemoryStore() *memory.Store { return memory.New() }

func newMemoryCache() cache.Cache { return cache.NewMemory(time.Minute, time.Minute) }
