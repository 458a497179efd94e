package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DialogsStore provides dialog database operations.
type DialogsStore struct {
	// coll is reference to "dialogs" collection in MongoDB
	coll *mongo.Collection
}

// NewDialogsStore returns a DialogsStore using given collection.
func NewDialogsStore(coll *mongo.Collection) *DialogsStore {
	return &DialogsStore{coll: coll}
}

func (s *DialogsStore) findOne(ctx context.Context, filter bson.M) (*Dialog, error) {
	var d Dialog
	if err := s.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// EnsurePublicDialog creates the public dialog if none exists and returns the
// stored one.
func (s *DialogsStore) EnsurePublicDialog(ctx context.Context, d *Dialog) (*Dialog, error) {
	// Upsert keyed on type: the partial unique index on public dialogs makes
	// a second bootstrap a no-op instead of a duplicate
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{
		"_id":            d.ID,
		"updated_at":     d.UpdatedAt,
		"messages_count": d.MessagesCount,
	}}

	var out Dialog
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"type": DialogPublic}, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// Lost a race with another bootstrapping process; read the winner
		return s.PublicDialog(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PublicDialog returns the single public dialog.
func (s *DialogsStore) PublicDialog(ctx context.Context) (*Dialog, error) {
	return s.findOne(ctx, bson.M{"type": DialogPublic})
}

// GetDialog finds a dialog by id.
func (s *DialogsStore) GetDialog(ctx context.Context, id string) (*Dialog, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindPrivateDialog finds the private dialog between a and b in either order.
func (s *DialogsStore) FindPrivateDialog(ctx context.Context, a, b string) (*Dialog, error) {
	return s.findOne(ctx, bson.M{"type": DialogPrivate, "party_key": PartyKey(a, b)})
}

// FindOrCreatePrivateDialog upserts on the canonical party key. The unique
// party_key index guarantees at most one dialog per pair even when two
// servers race; the loser of the race re-reads the winner's document.
func (s *DialogsStore) FindOrCreatePrivateDialog(ctx context.Context, d *Dialog) (*Dialog, bool, error) {
	key := PartyKey(d.Party[0], d.Party[1])
	filter := bson.M{"type": DialogPrivate, "party_key": key}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":            d.ID,
		"updated_at":     d.UpdatedAt,
		"messages_count": 0,
		"party":          d.Party,
	}}

	res, err := s.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}

	stored, err := s.findOne(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	created := res != nil && res.UpsertedCount == 1
	return stored, created, nil
}

// ListPrivateDialogs returns the private dialogs userID takes part in.
func (s *DialogsStore) ListPrivateDialogs(ctx context.Context, userID string) ([]*Dialog, error) {
	// party is an array field; equality on an array matches any element
	cursor, err := s.coll.Find(ctx, bson.M{"type": DialogPrivate, "party": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	dialogs := make([]*Dialog, 0)
	if err = cursor.All(ctx, &dialogs); err != nil {
		return nil, err
	}
	return dialogs, nil
}

// bump increments the message counter and moves updated_at forward,
// returning the dialog as it is after the update. A late writer carrying an
// older date leaves updated_at alone.
func (s *DialogsStore) bump(ctx context.Context, id string, date float64) (*Dialog, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"messages_count": 1},
		"$max": bson.M{"updated_at": date},
	}

	var d Dialog
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
