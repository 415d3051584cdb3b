package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category of a fund request
type Category string

// Categories
const (
	CategoryMedical   Category = "medical"
	CategoryEmergency Category = "emergency"
	CategoryEducation Category = "education"
	CategoryOther     Category = "other"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryMedical, CategoryEmergency, CategoryEducation, CategoryOther:
		return true
	}
	return false
}

// Urgency of a fund request
type Urgency string

// Urgency levels
const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid reports whether u is a known urgency level
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Status of a fund request. Completed and cancelled are terminal.
type Status string

// Statuses
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FundRequest Model
//
// CurrentAmount never decreases and Status is completed exactly when
// CurrentAmount has reached TargetAmount.
type FundRequest struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	OwnerID           string          `gorm:"size:36;index;not null" json:"owner_id"`
	Title             string          `gorm:"size:200;not null" json:"title"`
	Description       string          `gorm:"type:text" json:"description"`
	TargetAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_amount"`
	CurrentAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"current_amount"`
	Category          Category        `gorm:"size:16;index;not null" json:"category"`
	Urgency           Urgency         `gorm:"size:16;not null" json:"urgency"`
	Status            Status          `gorm:"size:16;index;not null" json:"status"`
	IsVerified        bool            `gorm:"not null;default:false" json:"is_verified"`
	VerificationCount int             `gorm:"not null;default:0" json:"verification_count"`
	Documents         []string        `gorm:"serializer:json;type:json" json:"documents"`
	Version           int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
}

// FundRequestDraft holds the owner supplied fields of a new fund request
type FundRequestDraft struct {
	Title        string
	Description  string
	TargetAmount decimal.Decimal
	Category     Category
	Urgency      Urgency
	Deadline     *time.Time
}

// NewFundRequest validates draft and returns an active, unverified request owned by ownerID
func NewFundRequest(ownerID string, draft FundRequestDraft, at time.Time) (*FundRequest, error) {
	title := strings.TrimSpace(draft.Title)
	switch {
	case ownerID == "":
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case !draft.Category.Valid():
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, draft.Category)
	case !draft.Urgency.Valid():
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrInvalidInput, draft.Urgency)
	case draft.Deadline != nil && !draft.Deadline.After(at):
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalidInput)
	}
	if !ValidAmount(draft.TargetAmount) {
		return nil, ErrInvalidAmount
	}
	return &FundRequest{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         title,
		Description:   strings.TrimSpace(draft.Description),
		TargetAmount:  draft.TargetAmount,
		CurrentAmount: decimal.Zero,
		Category:      draft.Category,
		Urgency:       draft.Urgency,
		Status:        StatusActive,
		Documents:     []string{},
		CreatedAt:     at,
		UpdatedAt:     at,
		Deadline:      draft.Deadline,
	}, nil
}

// ApplyDonation adds amount to the raised total, completing the request when
// the target is reached. It reports whether this donation completed it.
func (r *FundRequest) ApplyDonation(amount decimal.Decimal, at time.Time) (bool, error) {
	if r.Status != StatusActive {
		return false, ErrRequestNotActive
	}
	if !ValidAmount(amount) {
		return false, ErrInvalidAmount
	}
	r.CurrentAmount = r.CurrentAmount.Add(amount)
	r.UpdatedAt = at
	if r.CurrentAmount.GreaterThanOrEqual(r.TargetAmount) {
		r.Status = StatusCompleted
		return true, nil
	}
	return false, nil
}

// Cancel moves an active request to cancelled on behalf of its owner
func (r *FundRequest) Cancel(requesterID string, at time.Time) error {
	if requesterID != r.OwnerID {
		return ErrNotOwner
	}
	if r.Status != StatusActive {
		return ErrInvalidTransition
	}
	r.Status = StatusCancelled
	r.UpdatedAt = at
	return nil
}

// AttachDocument appends an uploaded document URI
func (r *FundRequest) AttachDocument(requesterID, uri string, at time.Time) error {
	if requesterID != r.OwnerID {
		return ErrNotOwner
	}
	if r.Status == StatusCancelled {
		return ErrRequestNotActive
	}
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: document must be an absolute http(s) URI", ErrInvalidInput)
	}
	r.Documents = append(r.Documents, u.String())
	r.UpdatedAt = at
	return nil
}

// Remaining returns how much is still needed to reach the target, never negative
func (r *FundRequest) Remaining() decimal.Decimal {
	left := r.TargetAmount.Sub(r.CurrentAmount)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}
