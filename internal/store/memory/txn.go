package memory

import (
	"context"
	"sort"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
)

type stagedWallet struct {
	value       domain.Wallet
	readVersion int64
	created     bool
}

type stagedRequest struct {
	value       domain.FundRequest
	readVersion int64
	created     bool
}

// txn overlays staged writes on the committed state. ListUsers and
// ListFundRequests only see committed rows.
type txn struct {
	s             *Store
	users         map[string]domain.User
	wallets       map[string]*stagedWallet
	requests      map[string]*stagedRequest
	endorsements  map[endorsementKey]domain.Endorsement
	transactions  []domain.WalletTransaction
	donations     []domain.Donation
	notifications []domain.Notification
	readMarks     map[string]struct{}
	walletReads   map[string]int64 // committed versions seen by GetWallet
}

func newTxn(s *Store) *txn {
	return &txn{
		s:            s,
		users:        map[string]domain.User{},
		wallets:      map[string]*stagedWallet{},
		requests:     map[string]*stagedRequest{},
		endorsements: map[endorsementKey]domain.Endorsement{},
		readMarks:    map[string]struct{}{},
		walletReads:  map[string]int64{},
	}
}

func (t *txn) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := t.users[id]; ok {
		if w, err := t.GetWallet(ctx, id); err == nil {
			u.Wallet = *w
		}
		return &u, nil
	}
	return t.s.GetUser(ctx, id)
}

func (t *txn) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for id, u := range t.users {
		if u.Username == username {
			return t.GetUser(ctx, id)
		}
	}
	return t.s.GetUserByUsername(ctx, username)
}

func (t *txn) ListUsers(ctx context.Context, page store.Page) ([]domain.User, int64, error) {
	return t.s.ListUsers(ctx, page)
}

func (t *txn) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if st, ok := t.wallets[userID]; ok {
		w := st.value
		return &w, nil
	}
	w, err := t.s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, seen := t.walletReads[userID]; !seen {
		t.walletReads[userID] = w.Version // validated at commit so reads form one snapshot
	}
	return w, nil
}

func (t *txn) ListTransactions(ctx context.Context, filter store.TransactionFilter, page store.Page) ([]domain.WalletTransaction, int64, error) {
	t.s.mu.RLock()
	rows := filterTransactions(t.s.transactions, filter)
	t.s.mu.RUnlock()
	rows = append(rows, filterTransactions(t.transactions, filter)...)
	sortTransactions(rows)
	return paginate(rows, page)
}

func (t *txn) SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	committed, err := t.s.SumTransactions(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	staged := sumTransactions(filterTransactions(t.transactions, store.TransactionFilter{UserID: userID}))
	return committed.Add(staged), nil
}

func (t *txn) GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error) {
	if st, ok := t.requests[id]; ok {
		r := cloneRequest(st.value)
		return &r, nil
	}
	return t.s.GetFundRequest(ctx, id)
}

func (t *txn) ListFundRequests(ctx context.Context, filter store.FundRequestFilter, page store.Page) ([]domain.FundRequest, int64, error) {
	return t.s.ListFundRequests(ctx, filter, page)
}

func (t *txn) HasEndorsed(ctx context.Context, requestID, verifierID string) (bool, error) {
	if _, ok := t.endorsements[endorsementKey{requestID, verifierID}]; ok {
		return true, nil
	}
	return t.s.HasEndorsed(ctx, requestID, verifierID)
}

func (t *txn) ListDonations(ctx context.Context, filter store.DonationFilter, page store.Page) ([]domain.Donation, int64, error) {
	t.s.mu.RLock()
	rows := filterDonations(t.s.donations, filter)
	t.s.mu.RUnlock()
	rows = append(rows, filterDonations(t.donations, filter)...)
	sortDonations(rows)
	return paginate(rows, page)
}

func (t *txn) SumDonations(ctx context.Context, filter store.DonationFilter) (decimal.Decimal, error) {
	total, err := t.s.SumDonations(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}
	for _, d := range filterDonations(t.donations, filter) {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (t *txn) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	for _, n := range t.notifications {
		if n.ID == id {
			return &n, nil
		}
	}
	n, err := t.s.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := t.readMarks[id]; ok {
		n.IsRead = true
	}
	return n, nil
}

func (t *txn) ListNotifications(ctx context.Context, userID string, page store.Page) ([]domain.Notification, int64, error) {
	rows := t.s.notificationsFor(userID)
	for i := range rows {
		if _, ok := t.readMarks[rows[i].ID]; ok {
			rows[i].IsRead = true
		}
	}
	for _, n := range t.notifications {
		if n.UserID == userID {
			rows = append(rows, n)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID) })
	return paginate(rows, page)
}

func (t *txn) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := t.GetUserByUsername(ctx, user.Username); err == nil {
		return domain.ErrUserExists
	}
	u := *user
	u.Wallet = domain.Wallet{}
	t.users[u.ID] = u
	return nil
}

func (t *txn) CreateWallet(ctx context.Context, wallet *domain.Wallet) error {
	if _, err := t.GetWallet(ctx, wallet.UserID); err == nil {
		return store.ErrConflict
	}
	t.wallets[wallet.UserID] = &stagedWallet{value: *wallet, created: true}
	return nil
}

func (t *txn) UpdateWallet(ctx context.Context, wallet *domain.Wallet) error {
	if st, ok := t.wallets[wallet.UserID]; ok {
		if st.value.Version != wallet.Version {
			return store.ErrConflict
		}
		st.value = *wallet
		st.value.Version++
		wallet.Version++
		return nil
	}
	current, err := t.s.GetWallet(ctx, wallet.UserID)
	if err != nil || current.Version != wallet.Version {
		return store.ErrConflict
	}
	next := *wallet
	next.Version++
	t.wallets[wallet.UserID] = &stagedWallet{value: next, readVersion: wallet.Version}
	wallet.Version++
	return nil
}

func (t *txn) AppendTransaction(ctx context.Context, record *domain.WalletTransaction) error {
	t.transactions = append(t.transactions, *record)
	return nil
}

func (t *txn) CreateFundRequest(ctx context.Context, request *domain.FundRequest) error {
	if _, err := t.GetFundRequest(ctx, request.ID); err == nil {
		return store.ErrConflict
	}
	t.requests[request.ID] = &stagedRequest{value: cloneRequest(*request), created: true}
	return nil
}

func (t *txn) UpdateFundRequest(ctx context.Context, request *domain.FundRequest) error {
	if st, ok := t.requests[request.ID]; ok {
		if st.value.Version != request.Version {
			return store.ErrConflict
		}
		st.value = cloneRequest(*request)
		st.value.Version++
		request.Version++
		return nil
	}
	current, err := t.s.GetFundRequest(ctx, request.ID)
	if err != nil || current.Version != request.Version {
		return store.ErrConflict
	}
	next := cloneRequest(*request)
	next.Version++
	t.requests[request.ID] = &stagedRequest{value: next, readVersion: request.Version}
	request.Version++
	return nil
}

func (t *txn) AddEndorsement(ctx context.Context, endorsement *domain.Endorsement) error {
	key := endorsementKey{endorsement.FundRequestID, endorsement.VerifierID}
	if ok, _ := t.HasEndorsed(ctx, key.requestID, key.verifierID); ok {
		return domain.ErrDuplicateEndorsement
	}
	t.endorsements[key] = *endorsement
	return nil
}

func (t *txn) AppendDonation(ctx context.Context, donation *domain.Donation) error {
	t.donations = append(t.donations, *donation)
	return nil
}

func (t *txn) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	t.notifications = append(t.notifications, *notification)
	return nil
}

func (t *txn) MarkNotificationRead(ctx context.Context, id string) error {
	for i := range t.notifications {
		if t.notifications[i].ID == id {
			t.notifications[i].IsRead = true
			return nil
		}
	}
	if _, err := t.s.GetNotification(ctx, id); err != nil {
		return err
	}
	t.readMarks[id] = struct{}{}
	return nil
}
