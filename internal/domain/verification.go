package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultVerificationThreshold is the number of distinct endorsers that marks a request verified
const DefaultVerificationThreshold = 3

// Endorsement Model, one row per (fund request, verifier)
type Endorsement struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	FundRequestID string    `gorm:"size:36;not null;uniqueIndex:idx_endorsement_request_verifier" json:"fund_request_id"`
	VerifierID    string    `gorm:"size:36;not null;uniqueIndex:idx_endorsement_request_verifier" json:"verifier_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// VerificationGate turns distinct endorsements into the one-way IsVerified flag
type VerificationGate struct {
	Threshold int
}

// NewVerificationGate returns a gate for threshold, falling back to the default for values below 1
func NewVerificationGate(threshold int) VerificationGate {
	if threshold < 1 {
		threshold = DefaultVerificationThreshold
	}
	return VerificationGate{Threshold: threshold}
}

// Endorse records verifierID's endorsement of r. alreadyEndorsed must come from
// the endorsement set of the same transaction.
func (g VerificationGate) Endorse(r *FundRequest, verifierID string, alreadyEndorsed bool, at time.Time) (*Endorsement, error) {
	if verifierID == "" {
		return nil, ErrInvalidInput
	}
	if verifierID == r.OwnerID {
		return nil, ErrSelfVerificationNotAllowed
	}
	if alreadyEndorsed {
		return nil, ErrDuplicateEndorsement
	}
	r.VerificationCount++
	if r.VerificationCount >= g.Threshold {
		r.IsVerified = true
	}
	r.UpdatedAt = at
	return &Endorsement{
		ID:            uuid.NewString(),
		FundRequestID: r.ID,
		VerifierID:    verifierID,
		CreatedAt:     at,
	}, nil
}
