package ledger

import (
	"context"
	"strings"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RegisterUser creates an account and its empty wallet in one commit.
// passwordHash must already be hashed.
func (s *Service) RegisterUser(ctx context.Context, username, passwordHash, role string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if role == "" {
		role = domain.RoleUser
	}
	var user *domain.User
	err := s.commit(ctx, "register", func(tx store.Tx) error {
		now := s.now()
		u := &domain.User{ID: uuid.NewString(), Username: username, Password: passwordHash, Role: role, CreatedAt: now}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		w := domain.NewWallet(u.ID, now)
		if err := tx.CreateWallet(ctx, w); err != nil {
			return err
		}
		u.Wallet = *w
		user = u
		return nil
	})
	if err != nil {
		user = nil
	}
	fields := logrus.Fields{"username": username}
	if user != nil {
		fields["user_id"] = user.ID
	}
	s.audit("register", "User registered", fields, err)
	return user, err
}

// UserByUsername looks a user up by login name
func (s *Service) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.store.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// User looks a user up by id
func (s *Service) User(ctx context.Context, id string) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// Users lists accounts with their wallets
func (s *Service) Users(ctx context.Context, page store.Page) (List[domain.User], error) {
	rows, total, err := s.store.ListUsers(ctx, page)
	if err != nil {
		return List[domain.User]{}, err
	}
	return newList(rows, total, page), nil
}
