package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/clock"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/repository"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/crypto"
)

// DefaultInviteTTL is how long an invitation stays redeemable when the
// caller does not choose.
const DefaultInviteTTL = 48 * time.Hour

// issueAttempts bounds retries when a generated code collides.
const issueAttempts = 3

type InviteService interface {
	// Issue creates an unused invitation for email valid for ttl and returns
	// its code. A non-positive ttl selects the configured default.
	Issue(ctx context.Context, email string, ttl time.Duration) (*model.Invitation, error)
	// VerifyAndRedeem marks the invitation used if code exists, belongs to
	// email, is unused and has not expired. Checks run in that order and the
	// whole operation is atomic per code.
	VerifyAndRedeem(ctx context.Context, code, email string) error
	List(ctx context.Context) ([]model.Invitation, error)
}

type inviteService struct {
	repo       repository.InvitationRepository
	clock      clock.Clock
	logger     *zap.Logger
	defaultTTL time.Duration

	generateCode func() (string, error)
}

func NewInviteService(repo repository.InvitationRepository, defaultTTL time.Duration, clk clock.Clock, logger *zap.Logger) InviteService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultInviteTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inviteService{
		repo:         repo,
		clock:        clk,
		logger:       logger,
		defaultTTL:   defaultTTL,
		generateCode: crypto.GenerateInviteCode,
	}
}

func (s *inviteService) Issue(ctx context.Context, email string, ttl time.Duration) (*model.Invitation, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	for i := 0; ; i++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate invitation code: %w", err)
		}

		now := s.clock.Now().UTC()
		expiresAt := now.Add(ttl)
		inv := &model.Invitation{
			ID:        uuid.New(),
			Email:     email,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: &expiresAt,
		}

		err = s.repo.Create(ctx, inv)
		if errors.Is(err, repository.ErrDuplicateCode) && i+1 < issueAttempts {
			s.logger.Warn("invitation code collision, regenerating", zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create invitation: %w", err)
		}

		s.logger.Info("invitation issued",
			zap.String("email", email),
			zap.String("code", crypto.CodePrefix(code)),
			zap.Time("expires_at", expiresAt),
		)
		return inv, nil
	}
}

// normalizeEmail reduces input such as "Jane <jane@example.com>" to the bare
// address, which is what redemption compares against.
func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address == "" {
		return "", ErrInvalidEmail
	}
	return addr.Address, nil
}

func (s *inviteService) VerifyAndRedeem(ctx context.Context, code, email string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvitationNotFound
	}

	err := s.repo.Redeem(ctx, code, func(inv *model.Invitation) error {
		switch {
		case !inv.EmailMatches(email):
			return ErrInvitationEmailMismatch
		case inv.Used:
			return ErrInvitationUsed
		case inv.ExpiresAt == nil:
			return ErrInvitationInvalidExpiry
		case inv.ExpiredAt(s.clock.Now()):
			return ErrInvitationExpired
		}
		return nil
	})

	fields := []zap.Field{zap.String("code", crypto.CodePrefix(code))}
	switch {
	case err == nil:
		s.logger.Info("invitation redeemed", fields...)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("invitation rejected", append(fields, zap.Error(ErrInvitationNotFound))...)
		return ErrInvitationNotFound
	case IsRedeemRejection(err):
		s.logger.Info("invitation rejected", append(fields, zap.Error(err))...)
		return err
	default:
		s.logger.Error("invitation redemption failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("redeem invitation: %w", err)
	}
}

func (s *inviteService) List(ctx context.Context) ([]model.Invitation, error) {
	invitations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

var _ InviteService = (*inviteService)(nil)
