// Package memory is an in-process store.Store with optimistic commits.
//
// A transaction reads committed state, stages its writes, and validates the
// versions it read when it commits. Used by tests and single-node setups.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
)

type endorsementKey struct {
	requestID  string
	verifierID string
}

// Store keeps every collection in maps guarded by one RWMutex
type Store struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	usernames     map[string]string
	wallets       map[string]domain.Wallet
	transactions  []domain.WalletTransaction
	requests      map[string]domain.FundRequest
	endorsements  map[endorsementKey]domain.Endorsement
	donations     []domain.Donation
	notifications map[string]domain.Notification
}

// New returns an empty store
func New() *Store {
	return &Store{
		users:         map[string]domain.User{},
		usernames:     map[string]string{},
		wallets:       map[string]domain.Wallet{},
		requests:      map[string]domain.FundRequest{},
		endorsements:  map[endorsementKey]domain.Endorsement{},
		notifications: map[string]domain.Notification{},
	}
}

func cloneRequest(r domain.FundRequest) domain.FundRequest {
	r.Documents = append([]string{}, r.Documents...)
	if r.Deadline != nil {
		d := *r.Deadline
		r.Deadline = &d
	}
	return r
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Wallet = s.wallets[id]
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.usernames[username]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Store) ListUsers(ctx context.Context, page store.Page) ([]domain.User, int64, error) {
	s.mu.RLock()
	rows := make([]domain.User, 0, len(s.users))
	for id, u := range s.users {
		u.Wallet = s.wallets[id]
		rows = append(rows, u)
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID) })
	return paginate(rows, page)
}

func (s *Store) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter store.TransactionFilter, page store.Page) ([]domain.WalletTransaction, int64, error) {
	s.mu.RLock()
	rows := filterTransactions(s.transactions, filter)
	s.mu.RUnlock()
	sortTransactions(rows)
	return paginate(rows, page)
}

func (s *Store) SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumTransactions(filterTransactions(s.transactions, store.TransactionFilter{UserID: userID})), nil
}

func (s *Store) GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	r = cloneRequest(r)
	return &r, nil
}

func (s *Store) ListFundRequests(ctx context.Context, filter store.FundRequestFilter, page store.Page) ([]domain.FundRequest, int64, error) {
	s.mu.RLock()
	rows := make([]domain.FundRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if matchesRequest(r, filter) {
			rows = append(rows, cloneRequest(r))
		}
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID) })
	return paginate(rows, page)
}

func (s *Store) HasEndorsed(ctx context.Context, requestID, verifierID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.endorsements[endorsementKey{requestID, verifierID}]
	return ok, nil
}

func (s *Store) ListDonations(ctx context.Context, filter store.DonationFilter, page store.Page) ([]domain.Donation, int64, error) {
	s.mu.RLock()
	rows := filterDonations(s.donations, filter)
	s.mu.RUnlock()
	sortDonations(rows)
	return paginate(rows, page)
}

func (s *Store) SumDonations(ctx context.Context, filter store.DonationFilter) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, d := range filterDonations(s.donations, filter) {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, page store.Page) ([]domain.Notification, int64, error) {
	rows := s.notificationsFor(userID)
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID) })
	return paginate(rows, page)
}

func (s *Store) notificationsFor(userID string) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			rows = append(rows, n)
		}
	}
	return rows
}

// Transaction runs fn against a staging area and commits it if every
// version read is still current
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxn(s)
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range tx.wallets {
		current, exists := s.wallets[id]
		if w.created && exists {
			return store.ErrConflict // created twice
		}
		if !w.created && (!exists || current.Version != w.readVersion) {
			return store.ErrConflict // version moved since read
		}
	}
	for id, version := range tx.walletReads {
		if _, staged := tx.wallets[id]; staged {
			continue
		}
		if current, exists := s.wallets[id]; !exists || current.Version != version {
			return store.ErrConflict // a wallet read went stale
		}
	}
	for id, r := range tx.requests {
		current, exists := s.requests[id]
		if r.created && exists {
			return store.ErrConflict
		}
		if !r.created && (!exists || current.Version != r.readVersion) {
			return store.ErrConflict
		}
	}
	for _, u := range tx.users {
		if _, taken := s.usernames[u.Username]; taken {
			return domain.ErrUserExists
		}
		if _, taken := s.users[u.ID]; taken {
			return store.ErrConflict
		}
	}
	for key := range tx.endorsements {
		if _, taken := s.endorsements[key]; taken {
			return domain.ErrDuplicateEndorsement
		}
	}
	for id := range tx.readMarks {
		if _, ok := s.notifications[id]; !ok {
			return domain.ErrNotificationNotFound
		}
	}

	for _, u := range tx.users {
		u.Wallet = domain.Wallet{}
		s.users[u.ID] = u
		s.usernames[u.Username] = u.ID
	}
	for id, w := range tx.wallets {
		s.wallets[id] = w.value
	}
	for id, r := range tx.requests {
		s.requests[id] = cloneRequest(r.value)
	}
	for key, e := range tx.endorsements {
		s.endorsements[key] = e
	}
	s.transactions = append(s.transactions, tx.transactions...)
	s.donations = append(s.donations, tx.donations...)
	for _, n := range tx.notifications {
		s.notifications[n.ID] = n
	}
	for id := range tx.readMarks {
		n := s.notifications[id]
		n.IsRead = true
		s.notifications[id] = n
	}
	return nil
}

func newer(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA > idB
	}
	return a.After(b)
}

func paginate[T any](rows []T, page store.Page) ([]T, int64, error) {
	total := int64(len(rows))
	start := page.Offset()
	if start >= len(rows) {
		return []T{}, total, nil
	}
	end := start + page.Size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func filterTransactions(src []domain.WalletTransaction, f store.TransactionFilter) []domain.WalletTransaction {
	rows := make([]domain.WalletTransaction, 0)
	for _, t := range src {
		switch {
		case f.UserID != "" && t.UserID != f.UserID:
		case f.Kind != "" && t.Kind != f.Kind:
		case f.From != nil && t.CreatedAt.Before(*f.From):
		case f.To != nil && t.CreatedAt.After(*f.To):
		default:
			rows = append(rows, t)
		}
	}
	return rows
}

func sortTransactions(rows []domain.WalletTransaction) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
}

func sumTransactions(rows []domain.WalletTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range rows {
		total = total.Add(t.Amount)
	}
	return total
}

func matchesRequest(r domain.FundRequest, f store.FundRequestFilter) bool {
	return (f.OwnerID == "" || r.OwnerID == f.OwnerID) &&
		(f.Status == "" || r.Status == f.Status) &&
		(f.Category == "" || r.Category == f.Category)
}

func filterDonations(src []domain.Donation, f store.DonationFilter) []domain.Donation {
	rows := make([]domain.Donation, 0)
	for _, d := range src {
		if (f.FundRequestID == "" || d.FundRequestID == f.FundRequestID) && (f.DonorID == "" || d.DonorID == f.DonorID) {
			rows = append(rows, d)
		}
	}
	return rows
}

func sortDonations(rows []domain.Donation) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
}
