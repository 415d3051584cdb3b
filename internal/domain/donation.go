package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation Model, created once per settled donation and never modified
type Donation struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	FundRequestID string          `gorm:"size:36;index;not null" json:"fund_request_id"`
	DonorID       string          `gorm:"size:36;index;not null" json:"donor_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	IsAnonymous   bool            `gorm:"not null;default:false" json:"is_anonymous"`
	Message       *string         `gorm:"size:500" json:"message,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// NewDonation builds the record of donorID giving amount to requestID
func NewDonation(requestID, donorID string, amount decimal.Decimal, isAnonymous bool, message *string, at time.Time) *Donation {
	return &Donation{
		ID:            uuid.NewString(),
		FundRequestID: requestID,
		DonorID:       donorID,
		Amount:        amount,
		IsAnonymous:   isAnonymous,
		Message:       message,
		CreatedAt:     at,
	}
}

// VisibleTo returns a copy with the donor hidden when the donation is
// anonymous and viewerID is not the donor
func (d Donation) VisibleTo(viewerID string) Donation {
	if d.IsAnonymous && d.DonorID != viewerID {
		d.DonorID = ""
	}
	return d
}
