package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

// invitationDocument is the write shape; the code is the document _id.
type invitationDocument struct {
	Code      string     `bson:"_id"`
	ID        string     `bson:"id"`
	Email     string     `bson:"email"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	Used      bool       `bson:"used"`
	Version   int64      `bson:"version"`
}

// storedInvitation is the read shape. expires_at stays raw because older
// writers stored it either as a BSON date or as an ISO-8601 string.
type storedInvitation struct {
	Code      string        `bson:"_id"`
	ID        string        `bson:"id"`
	Email     string        `bson:"email"`
	CreatedAt time.Time     `bson:"created_at"`
	ExpiresAt bson.RawValue `bson:"expires_at"`
	Used      bool          `bson:"used"`
	Version   int64         `bson:"version"`
}

type mongoInvitationRepository struct {
	coll *mongo.Collection
}

// NewMongoInvitationRepository redeems with a versioned compare-and-swap:
// the update only matches if version and used are unchanged since the read,
// otherwise the unit is reloaded and retried.
func NewMongoInvitationRepository(coll *mongo.Collection) InvitationRepository {
	return &mongoInvitationRepository{coll: coll}
}

func (r *mongoInvitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	doc := invitationDocument{
		Code:      inv.Code,
		ID:        inv.ID.String(),
		Email:     inv.Email,
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
		Used:      inv.Used,
		Version:   inv.Version,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *mongoInvitationRepository) List(ctx context.Context) ([]model.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []storedInvitation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]model.Invitation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (r *mongoInvitationRepository) Redeem(ctx context.Context, code string, check RedeemFunc) error {
	for i := 0; i < maxTxAttempts; i++ {
		var doc storedInvitation
		err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: code}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		inv := doc.toModel()
		if err := check(&inv); err != nil {
			return err
		}

		filter := bson.D{
			{Key: "_id", Value: code},
			{Key: "version", Value: doc.Version},
			{Key: "used", Value: false},
		}
		update := bson.D{
			{Key: "$set", Value: bson.D{{Key: "used", Value: true}}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}},
		}
		res, err := r.coll.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return ErrConflict
}

func (d storedInvitation) toModel() model.Invitation {
	inv := model.Invitation{
		Email:     d.Email,
		Code:      d.Code,
		CreatedAt: d.CreatedAt,
		Used:      d.Used,
		Version:   d.Version,
	}
	if id, err := uuid.Parse(d.ID); err == nil {
		inv.ID = id
	}
	if t, ok := rawTimestamp(d.ExpiresAt); ok {
		inv.ExpiresAt = &t
	}
	return inv
}

// rawTimestamp accepts a BSON date or an ISO-8601 string.
func rawTimestamp(v bson.RawValue) (time.Time, bool) {
	switch v.Type {
	case bson.TypeDateTime:
		ms, ok := v.DateTimeOK()
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	case bson.TypeString:
		s, ok := v.StringValueOK()
		if !ok {
			return time.Time{}, false
		}
		return parseTimestamp(s)
	default:
		return time.Time{}, false
	}
}

// EnsureMongoIndexes creates the index backing the newest-first listing.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
