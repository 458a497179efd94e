package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	// coll is reference to "messages" collection in MongoDB
	// Set via NewMessagesStore() and used in all methods below
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll} // Store reference to MongoDB collection
}

// insert stores an already stamped message document.
func (m *MessagesStore) insert(ctx context.Context, msg *Message) error {
	// InsertOne adds the message document to MongoDB collection
	_, err := m.coll.InsertOne(ctx, msg)
	return err
}

// History returns up to limit of the newest messages in a dialog strictly
// older than before (no cursor when before is zero), oldest first.
func (m *MessagesStore) History(ctx context.Context, dialogID string, before float64, limit int) ([]*Message, error) {
	// Sort newest first so the limit keeps the most recent page; _id breaks
	// ties because ULIDs grow with insertion order
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	filter := bson.M{"dialog": dialogID}
	if before > 0 {
		// Strictly older: the boundary message is already on the client
		filter["date"] = bson.M{"$lt": before}
	}

	// Execute the query; Find returns a cursor to iterate results
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err // Database error
	}
	// Ensure cursor is closed when done (cleanup)
	defer cursor.Close(ctx)

	messages := make([]*Message, 0, limit)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err // Error decoding documents
	}

	// Reverse the slice because MongoDB returned newest first (-1 sort)
	// But client expects chronological order: oldest message first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
