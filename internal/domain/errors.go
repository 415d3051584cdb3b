package domain

import "errors"

// Ledger error kinds. All of them are recoverable and safe to show to the caller.
var (
	ErrInvalidAmount              = errors.New("amount must be greater than 0 with at most 2 decimal places")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrRequestNotFound            = errors.New("fund request not found")
	ErrRequestNotActive           = errors.New("fund request is not active")
	ErrNotOwner                   = errors.New("only the owner can modify this fund request")
	ErrInvalidTransition          = errors.New("invalid fund request status transition")
	ErrDuplicateEndorsement       = errors.New("fund request already endorsed by this verifier")
	ErrSelfVerificationNotAllowed = errors.New("owners cannot endorse their own fund request")
	ErrTransientConflict          = errors.New("concurrent update conflict, please retry")

	ErrWalletNotFound       = errors.New("wallet not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("username already exists")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidInput         = errors.New("invalid input")
)

// Kind returns a stable machine readable code for a ledger error, or "" if err is not one.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ""
}

var kinds = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrRequestNotFound, "request_not_found"},
	{ErrRequestNotActive, "request_not_active"},
	{ErrNotOwner, "not_owner"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrDuplicateEndorsement, "duplicate_endorsement"},
	{ErrSelfVerificationNotAllowed, "self_verification_not_allowed"},
	{ErrTransientConflict, "transient_conflict"},
	{ErrWalletNotFound, "wallet_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrUserExists, "user_exists"},
	{ErrNotificationNotFound, "notification_not_found"},
	{ErrInvalidInput, "invalid_input"},
}
