package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

type redisInvitationRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisInvitationRepository stores each invitation as a hash and redeems
// with WATCH/MULTI: the transaction aborts if the hash changed after it was
// read, and the whole load-check-mark unit is retried.
func NewRedisInvitationRepository(client *redis.Client, prefix string) InvitationRepository {
	return &redisInvitationRepository{client: client, prefix: prefix + "invitation:"}
}

func (r *redisInvitationRepository) key(code string) string { return r.prefix + code }
func (r *redisInvitationRepository) indexKey() string       { return r.prefix + "index" }

// Create writes the hash and its index entry in one MULTI, guarded by WATCH
// on the key, so no reader ever sees a partial record.
func (r *redisInvitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	key := r.key(inv.Code)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return ErrDuplicateCode
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeInvitationHash(inv))
			pipe.ZAdd(ctx, r.indexKey(), redis.Z{
				Score:  float64(inv.CreatedAt.UnixNano()),
				Member: inv.Code,
			})
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (r *redisInvitationRepository) List(ctx context.Context) ([]model.Invitation, error) {
	codes, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []model.Invitation{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(codes))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, code := range codes {
			cmds[i] = pipe.HGetAll(ctx, r.key(code))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Invitation, 0, len(codes))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out = append(out, decodeInvitationHash(fields))
	}
	return out, nil
}

func (r *redisInvitationRepository) Redeem(ctx context.Context, code string, check RedeemFunc) error {
	key := r.key(code)
	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return ErrNotFound
		}

		inv := decodeInvitationHash(fields)
		if err := check(&inv); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "used", "1", "version", inv.Version+1)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func encodeInvitationHash(inv *model.Invitation) map[string]any {
	fields := map[string]any{
		"id":         inv.ID.String(),
		"email":      inv.Email,
		"code":       inv.Code,
		"created_at": formatTimestamp(inv.CreatedAt),
		"used":       strconv.FormatBool(inv.Used),
		"version":    inv.Version,
	}
	if inv.ExpiresAt != nil {
		fields["expires_at"] = formatTimestamp(*inv.ExpiresAt)
	}
	return fields
}

// decodeInvitationHash is lenient: an unparsable expires_at leaves ExpiresAt
// nil so redemption reports it as invalid expiry data instead of failing.
func decodeInvitationHash(fields map[string]string) model.Invitation {
	inv := model.Invitation{
		Email: fields["email"],
		Code:  fields["code"],
	}
	if id, err := uuid.Parse(fields["id"]); err == nil {
		inv.ID = id
	}
	if t, ok := parseTimestamp(fields["created_at"]); ok {
		inv.CreatedAt = t
	}
	if t, ok := parseTimestamp(fields["expires_at"]); ok {
		inv.ExpiresAt = &t
	}
	inv.Used = fields["used"] == "1" || fields["used"] == "true"
	if v, err := strconv.ParseInt(fields["version"], 10, 64); err == nil {
		inv.Version = v
	}
	return inv
}
