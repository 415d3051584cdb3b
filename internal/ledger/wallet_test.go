package ledger

import (
	"context"
	"sync"
	"testing"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesEmptyWallet(t *testing.T) {
	svc, st := newTestService(t, Options{})
	id := register(t, svc, "Alice")

	assert.True(t, balanceOf(t, st, id).IsZero())
	u, err := svc.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = svc.RegisterUser(context.Background(), "ALICE", "hash", "")
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestDepositWithdrawKeepsLedgerBalanced(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	id := register(t, svc, "bob")

	dep, err := svc.Deposit(ctx, id, money("120.50"), "card")
	require.NoError(t, err)
	assert.Equal(t, domain.KindDeposit, dep.Kind)
	assert.Equal(t, "Deposit via card", dep.Description)

	wd, err := svc.Withdraw(ctx, id, money("20.25"))
	require.NoError(t, err)
	assert.Equal(t, domain.KindWithdrawal, wd.Kind)
	assert.True(t, money("-20.25").Equal(wd.Amount))

	_, err = svc.Deposit(ctx, id, money("4.75"), "bank")
	require.NoError(t, err)

	assert.True(t, money("105").Equal(balanceOf(t, st, id)))
	requireBalanced(t, svc, id)

	history, _, err := svc.History(ctx, id, store.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, history.Items, 3)
	assert.Equal(t, domain.KindDeposit, history.Items[0].Kind)
	assert.True(t, money("4.75").Equal(history.Items[0].Amount))
}

func TestInvalidAmountsAreRejected(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	id := fundedUser(t, svc, "carol", "50")

	for _, amount := range []string{"0", "-5", "1.005"} {
		_, err := svc.Deposit(ctx, id, money(amount), "card")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, amount)
		_, err = svc.Withdraw(ctx, id, money(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, amount)
	}
	assert.True(t, money("50").Equal(balanceOf(t, st, id)))
	requireBalanced(t, svc, id)
}

func TestWithdrawMoreThanBalanceLeavesBalance(t *testing.T) {
	svc, st := newTestService(t, Options{})
	id := fundedUser(t, svc, "dave", "100")

	_, err := svc.Withdraw(context.Background(), id, money("100.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, money("100").Equal(balanceOf(t, st, id)))
	requireBalanced(t, svc, id)
}

func TestDepositToMissingWallet(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, err := svc.Deposit(context.Background(), "nobody", money("10"), "card")
	require.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc, st := newTestService(t, Options{MaxAttempts: 100})
	ctx := context.Background()
	id := fundedUser(t, svc, "erin", "100")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, id, money("10"))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, successes)
	assert.True(t, balanceOf(t, st, id).IsZero())
	requireBalanced(t, svc, id)
}

func TestReconcileStaysBalancedDuringDeposits(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxAttempts: 200})
	ctx := context.Background()
	id := fundedUser(t, svc, "fay", "0")

	var wg sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, err := svc.Deposit(ctx, id, money("1"), "card")
				assert.NoError(t, err)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	checks := 0
	for running := true; running; checks++ {
		select {
		case <-done:
			running = false
		default:
		}
		rec, err := svc.Reconcile(ctx, id)
		require.NoError(t, err)
		require.Truef(t, rec.Balanced, "check %d: balance %s != ledger %s", checks, rec.Balance, rec.Ledger)
	}
	assert.True(t, money("1600").Equal(balanceOf(t, svc.store, id)))
}

func TestConflictRetriesAreBounded(t *testing.T) {
	cs := &conflictStore{Store: newMemoryStore()}
	svc := New(cs, newMemoryCache(), Options{MaxAttempts: 3})

	_, err := svc.Deposit(context.Background(), "u1", money("10"), "card")
	require.ErrorIs(t, err, domain.ErrTransientConflict)
	assert.EqualValues(t, 3, cs.calls.Load())
}

func TestWalletSnapshotIsInvalidatedByCommit(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := fundedUser(t, svc, "frank", "10")

	w, hit, err := svc.Wallet(ctx, id)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, money("10").Equal(w.Balance))

	_, hit, err = svc.Wallet(ctx, id)
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = svc.Deposit(ctx, id, money("5"), "card")
	require.NoError(t, err)

	w, hit, err = svc.Wallet(ctx, id)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, money("15").Equal(w.Balance))
}

func TestAdminTransactionFilter(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	a := fundedUser(t, svc, "gina", "30")
	fundedUser(t, svc, "hank", "40")
	_, err := svc.Withdraw(ctx, a, money("5"))
	require.NoError(t, err)

	all, err := svc.Transactions(ctx, store.TransactionFilter{}, store.NewPage(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	withdrawals, err := svc.Transactions(ctx, store.TransactionFilter{Kind: domain.KindWithdrawal}, store.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, withdrawals.Items, 1)
	assert.Equal(t, a, withdrawals.Items[0].UserID)

	sum := decimal.Zero
	for _, tx := range all.Items {
		sum = sum.Add(tx.Amount)
	}
	assert.True(t, money("65").Equal(sum))
}
