package ledger

import (
	"context"

	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"
)

// Notifications lists userID's notifications, newest first
func (s *Service) Notifications(ctx context.Context, userID string, page store.Page) (List[domain.Notification], error) {
	rows, total, err := s.store.ListNotifications(ctx, userID, page)
	if err != nil {
		return List[domain.Notification]{}, err
	}
	return newList(rows, total, page), nil
}

// MarkNotificationRead marks one of userID's notifications as read.
// Other users' notifications are reported as not found.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		n, err := tx.GetNotification(ctx, id)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return domain.ErrNotificationNotFound
		}
		if n.IsRead {
			return nil
		}
		return tx.MarkNotificationRead(ctx, id)
	})
}
