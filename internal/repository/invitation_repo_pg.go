package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

type pgInvitationRepository struct {
	db *gorm.DB
}

// NewPGInvitationRepository redeems under SELECT ... FOR UPDATE inside a
// transaction, so concurrent redeemers of one code queue on its row lock.
func NewPGInvitationRepository(db *gorm.DB) InvitationRepository {
	return &pgInvitationRepository{db: db}
}

func (r *pgInvitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	err := r.db.WithContext(ctx).Create(inv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCode
	}
	return err
}

func (r *pgInvitationRepository) List(ctx context.Context) ([]model.Invitation, error) {
	var invitations []model.Invitation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *pgInvitationRepository) Redeem(ctx context.Context, code string, check RedeemFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.Invitation
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("code = ?", code).
			First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := check(&inv); err != nil {
			return err
		}

		res := tx.Model(&model.Invitation{}).
			Where("id = ? AND used = ?", inv.ID, false).
			Updates(map[string]any{
				"used":    true,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrConflict
		}
		return nil
	})
}
