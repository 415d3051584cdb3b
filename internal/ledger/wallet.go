package ledger

import (
	"context"

	"crowdfund_ledger/internal/cache"
	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Deposit credits userID's wallet with amount paid in through method
func (s *Service) Deposit(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.WalletTransaction, error) {
	var record *domain.WalletTransaction
	err := s.mutateWallet(ctx, "deposit", userID, amount, func(w *domain.Wallet) (*domain.WalletTransaction, error) {
		return w.Deposit(amount, method, s.now())
	}, &record)
	s.audit("deposit", "Deposit transaction", logrus.Fields{"user_id": userID, "amount": amount.String(), "method": method}, err)
	return record, err
}

// Withdraw debits amount from userID's wallet
func (s *Service) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*domain.WalletTransaction, error) {
	var record *domain.WalletTransaction
	err := s.mutateWallet(ctx, "withdrawal", userID, amount, func(w *domain.Wallet) (*domain.WalletTransaction, error) {
		return w.Withdraw(amount, s.now())
	}, &record)
	s.audit("withdrawal", "Withdrawal transaction", logrus.Fields{"user_id": userID, "amount": amount.String()}, err)
	return record, err
}

// mutateWallet applies change to the wallet and appends the record it
// returns, both in one commit
func (s *Service) mutateWallet(ctx context.Context, op, userID string, amount decimal.Decimal,
	change func(*domain.Wallet) (*domain.WalletTransaction, error), out **domain.WalletTransaction) error {
	if !domain.ValidAmount(amount) {
		return domain.ErrInvalidAmount
	}
	err := s.commit(ctx, op, func(tx store.Tx) error {
		*out = nil
		w, err := tx.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		record, err := change(w)
		if err != nil {
			return err
		}
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, record); err != nil {
			return err
		}
		*out = record
		return nil
	})
	if err != nil {
		*out = nil
		return err
	}
	s.forget(ctx, cache.WalletKey(userID))
	return nil
}

// debitForDonation moves amount out of the donor's wallet inside a settlement
// transaction. It is not exposed on its own.
func (s *Service) debitForDonation(ctx context.Context, tx store.Tx, donorID string, amount decimal.Decimal, request *domain.FundRequest) (*domain.Wallet, *domain.WalletTransaction, error) {
	w, err := tx.GetWallet(ctx, donorID)
	if err != nil {
		return nil, nil, err
	}
	record, err := w.DebitForDonation(amount, request, s.now())
	if err != nil {
		return nil, nil, err
	}
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return nil, nil, err
	}
	if err := tx.AppendTransaction(ctx, record); err != nil {
		return nil, nil, err
	}
	return w, record, nil
}

// Wallet returns userID's wallet, possibly from a snapshot. The bool reports a cache hit.
func (s *Service) Wallet(ctx context.Context, userID string) (*domain.Wallet, bool, error) {
	w, hit, err := cached(ctx, s, cache.WalletKey(userID), func() (domain.Wallet, error) {
		w, err := s.store.GetWallet(ctx, userID)
		if err != nil {
			return domain.Wallet{}, err
		}
		return *w, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &w, hit, nil
}

// History lists userID's wallet transactions, newest first
func (s *Service) History(ctx context.Context, userID string, page store.Page) (List[domain.WalletTransaction], bool, error) {
	w, _, err := s.Wallet(ctx, userID)
	if err != nil {
		return List[domain.WalletTransaction]{}, false, err
	}
	key := cache.HistoryKey(userID, w.Version, page.Number, page.Size)
	return cached(ctx, s, key, func() (List[domain.WalletTransaction], error) {
		return s.Transactions(ctx, store.TransactionFilter{UserID: userID}, page)
	})
}

// Transactions lists wallet transactions across users, read straight from the store
func (s *Service) Transactions(ctx context.Context, filter store.TransactionFilter, page store.Page) (List[domain.WalletTransaction], error) {
	rows, total, err := s.store.ListTransactions(ctx, filter, page)
	if err != nil {
		return List[domain.WalletTransaction]{}, err
	}
	return newList(rows, total, page), nil
}

// Reconciliation compares a wallet balance with the sum of its transactions
type Reconciliation struct {
	UserID   string          `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Ledger   decimal.Decimal `json:"ledger"`
	Balanced bool            `json:"balanced"`
}

// Reconcile checks that userID's balance equals the sum of their transaction amounts.
// Both values come from one snapshot; a commit landing between the reads
// conflicts and the pair is read again.
func (s *Service) Reconcile(ctx context.Context, userID string) (*Reconciliation, error) {
	var rec *Reconciliation
	err := s.commit(ctx, "reconcile", func(tx store.Tx) error {
		rec = nil
		w, err := tx.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		total, err := tx.SumTransactions(ctx, userID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{UserID: userID, Balance: w.Balance, Ledger: total, Balanced: w.Balance.Equal(total)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Balanced {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"balance": rec.Balance.String(),
			"ledger":  rec.Ledger.String(),
		}).Error("Wallet balance diverges from transaction ledger")
	}
	return rec, nil
}
