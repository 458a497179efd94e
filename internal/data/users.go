package data

import (
	"context" // Used for cancellation and timeouts
	"errors"  // Sentinel matching
	"regexp"  // Escaping search input

	"go.mongodb.org/mongo-driver/v2/bson"  // MongoDB document queries
	"go.mongodb.org/mongo-driver/v2/mongo" // MongoDB driver
)

// UsersStore performs user DB operations against MongoDB.
type UsersStore struct {
	// coll is reference to "users" collection in MongoDB
	// Set via NewUsersStore() and used in all methods below
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll} // Store reference to MongoDB collection
}

// CreateUser inserts a new user document. The caller has already assigned
// the id, normalized the email and hashed the password.
func (u *UsersStore) CreateUser(ctx context.Context, user *User) error {
	// InsertOne adds the document to MongoDB "users" collection
	_, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// The unique email index rejects a second registration for the same address
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		// Other database errors (connection, validation, etc)
		return err
	}
	return nil
}

// findOne decodes the single user matching filter.
func (u *UsersStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		// No document found (user doesn't exist)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUser finds a user by id.
func (u *UsersStore) GetUser(ctx context.Context, id string) (*User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail finds a user by email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	// bson.M{"email": email} creates MongoDB query filter: {email: "provided@email.com"}
	return u.findOne(ctx, bson.M{"email": email})
}

// ListUsers returns the users whose ids appear in ids.
func (u *UsersStore) ListUsers(ctx context.Context, ids []string) ([]*User, error) {
	// $in matches any of the listed ids; unknown ids simply produce no document
	return u.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// SearchUsers returns users whose name contains q. Matching is case-sensitive.
func (u *UsersStore) SearchUsers(ctx context.Context, q string) ([]*User, error) {
	// QuoteMeta keeps user input from being interpreted as a pattern
	return u.findMany(ctx, bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(q)}})
}

func (u *UsersStore) findMany(ctx context.Context, filter bson.M) ([]*User, error) {
	cursor, err := u.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Ensure cursor is closed when done (cleanup)
	defer cursor.Close(ctx)

	users := make([]*User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
