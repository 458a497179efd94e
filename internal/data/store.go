// Package data holds the chat domain records and the stores that keep them.
package data

import "context"

// Store is the persistence contract used by the service layer. Every method
// that reads and then writes runs as one atomic unit.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, ids []string) ([]*User, error)
	SearchUsers(ctx context.Context, q string) ([]*User, error)

	EnsurePublicDialog(ctx context.Context, d *Dialog) (*Dialog, error)
	PublicDialog(ctx context.Context) (*Dialog, error)
	GetDialog(ctx context.Context, id string) (*Dialog, error)
	FindPrivateDialog(ctx context.Context, a, b string) (*Dialog, error)
	FindOrCreatePrivateDialog(ctx context.Context, d *Dialog) (*Dialog, bool, error)
	ListPrivateDialogs(ctx context.Context, userID string) ([]*Dialog, error)

	AppendMessage(ctx context.Context, m *Message) (*Dialog, error)
	ListMessages(ctx context.Context, dialogID string, before float64, limit int) ([]*Message, error)

	Populate(ctx context.Context, users []*User, dialogs []*Dialog, messages []*Message) error
	Close(ctx context.Context) error
}
