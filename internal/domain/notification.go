package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification
type NotificationType string

// Notification types raised by the ledger
const (
	NotifyDonationReceived NotificationType = "donation_received"
	NotifyRequestFunded    NotificationType = "request_funded"
)

// Notification Model
type Notification struct {
	ID            string           `gorm:"primaryKey;size:36" json:"id"`
	UserID        string           `gorm:"size:36;index;not null" json:"user_id"`
	Type          NotificationType `gorm:"size:32;not null" json:"type"`
	Title         string           `gorm:"size:200" json:"title"`
	Message       string           `gorm:"size:500" json:"message"`
	FundRequestID *string          `gorm:"size:36" json:"fund_request_id,omitempty"`
	IsRead        bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
}

// NewNotification builds an unread notification for userID about requestID
func NewNotification(userID string, kind NotificationType, title, message, requestID string, at time.Time) *Notification {
	return &Notification{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          kind,
		Title:         title,
		Message:       message,
		FundRequestID: &requestID,
		CreatedAt:     at,
	}
}
