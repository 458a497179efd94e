package data

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Collections is the subset of the database client the Mongo store needs.
type Collections interface {
	UsersCollection() *mongo.Collection
	DialogsCollection() *mongo.Collection
	MessagesCollection() *mongo.Collection
	Close(ctx context.Context) error
}

// MongoStore implements Store on top of the three MongoDB collection stores.
type MongoStore struct {
	*UsersStore
	*DialogsStore
	messages *MessagesStore
	client   Collections
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore wires the collection stores of c together.
func NewMongoStore(c Collections) *MongoStore {
	return &MongoStore{
		UsersStore:   NewUsersStore(c.UsersCollection()),
		DialogsStore: NewDialogsStore(c.DialogsCollection()),
		messages:     NewMessagesStore(c.MessagesCollection()),
		client:       c,
	}
}

// AppendMessage bumps the dialog and then inserts the message. The two writes
// are not transactional: a failed insert leaves the counter one ahead.
func (s *MongoStore) AppendMessage(ctx context.Context, m *Message) (*Dialog, error) {
	d, err := s.DialogsStore.bump(ctx, m.Dialog, m.Date)
	if err != nil {
		return nil, err
	}
	if err := s.messages.insert(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return d, nil
}

// ListMessages returns a history page of a dialog.
func (s *MongoStore) ListMessages(ctx context.Context, dialogID string, before float64, limit int) ([]*Message, error) {
	return s.messages.History(ctx, dialogID, before, limit)
}

// Populate bulk-inserts seed records.
func (s *MongoStore) Populate(ctx context.Context, users []*User, dialogs []*Dialog, messages []*Message) error {
	if len(users) > 0 {
		if _, err := s.UsersStore.coll.InsertMany(ctx, users); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	if len(dialogs) > 0 {
		for _, d := range dialogs {
			if d.IsPrivate() && len(d.Party) == 2 {
				d.PartyKey = PartyKey(d.Party[0], d.Party[1])
			}
		}
		if _, err := s.DialogsStore.coll.InsertMany(ctx, dialogs); err != nil {
			return fmt.Errorf("seed dialogs: %w", err)
		}
	}
	if len(messages) > 0 {
		if _, err := s.messages.coll.InsertMany(ctx, messages); err != nil {
			return fmt.Errorf("seed messages: %w", err)
		}
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
