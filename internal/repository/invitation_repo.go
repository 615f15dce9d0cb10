package repository

import (
	"context"
	"errors"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

var (
	ErrNotFound      = errors.New("invitation not found")
	ErrDuplicateCode = errors.New("invitation code already exists")
	// ErrConflict is returned when an optimistic backend keeps losing the
	// compare-and-swap race and gives up.
	ErrConflict = errors.New("invitation modified concurrently")
)

// maxTxAttempts bounds optimistic transaction retries on create and
// redeem.
const maxTxAttempts = 8

// RedeemFunc inspects an invitation loaded inside the redemption unit. A nil
// return marks it used; any error aborts the unit without writing and is
// returned unchanged by Redeem.
type RedeemFunc func(inv *model.Invitation) error

// InvitationRepository persists invitations keyed by code.
//
// Redeem must run load, check and mark-used as one isolated unit per record:
// two concurrent Redeem calls on the same code can never both pass check
// with Used == false.
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	List(ctx context.Context) ([]model.Invitation, error)
	Redeem(ctx context.Context, code string, check RedeemFunc) error
}
