package service

import "errors"

// Redemption failures. Messages are shown to the end user as-is.
var (
	ErrInvitationNotFound      = errors.New("Invalid invitation code")
	ErrInvitationEmailMismatch = errors.New("This invitation is not for this email address")
	ErrInvitationUsed          = errors.New("Invitation code has already been used")
	ErrInvitationInvalidExpiry = errors.New("Invalid expiry date format")
	ErrInvitationExpired       = errors.New("Invitation code has expired")
)

var (
	ErrInvalidEmail    = errors.New("a valid email address is required")
	ErrInvalidDrugName = errors.New("invalid drug name: use 2-100 letters, digits, spaces, hyphens or parentheses")
	ErrInvalidImage    = errors.New("invalid image format uploaded")
	ErrEmptyInput      = errors.New("input must not be empty")
)

// IsRedeemRejection reports whether err is one of the terminal redemption
// failures, as opposed to a storage problem.
func IsRedeemRejection(err error) bool {
	return errors.Is(err, ErrInvitationNotFound) ||
		errors.Is(err, ErrInvitationEmailMismatch) ||
		errors.Is(err, ErrInvitationUsed) ||
		errors.Is(err, ErrInvitationInvalidExpiry) ||
		errors.Is(err, ErrInvitationExpired)
}
