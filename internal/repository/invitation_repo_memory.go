package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

type memoryInvitationRepository struct {
	mu          sync.Mutex
	invitations map[string]model.Invitation
}

// NewMemoryInvitationRepository keeps invitations in process memory. Redeem
// holds the store mutex for the whole load-check-mark unit. Suitable for
// single-instance deployments and tests.
func NewMemoryInvitationRepository() InvitationRepository {
	return &memoryInvitationRepository{
		invitations: make(map[string]model.Invitation),
	}
}

func (r *memoryInvitationRepository) Create(_ context.Context, inv *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invitations[inv.Code]; exists {
		return ErrDuplicateCode
	}
	r.invitations[inv.Code] = copyInvitation(*inv)
	return nil
}

func (r *memoryInvitationRepository) List(_ context.Context) ([]model.Invitation, error) {
	r.mu.Lock()
	out := make([]model.Invitation, 0, len(r.invitations))
	for _, inv := range r.invitations {
		out = append(out, copyInvitation(inv))
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryInvitationRepository) Redeem(_ context.Context, code string, check RedeemFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.invitations[code]
	if !ok {
		return ErrNotFound
	}

	inv := copyInvitation(stored)
	if err := check(&inv); err != nil {
		return err
	}

	stored.Used = true
	stored.Version++
	r.invitations[code] = stored
	return nil
}

// copyInvitation detaches the ExpiresAt pointer so callers cannot mutate
// stored state.
func copyInvitation(inv model.Invitation) model.Invitation {
	if inv.ExpiresAt != nil {
		exp := *inv.ExpiresAt
		inv.ExpiresAt = &exp
	}
	return inv
}
