package data

import (
	"crypto/rand"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PageSize is the number of messages returned by a single history page.
const PageSize = 20

// Dialog types.
const (
	DialogPublic  = "public"
	DialogPrivate = "private"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           string `json:"id" bson:"_id"`
	Email        string `json:"email" bson:"email"`
	Name         string `json:"name" bson:"name"`
	PasswordHash string `json:"-" bson:"password_hash"`
	Avatar       string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// GetID implements Entity.
func (u User) GetID() string { return u.ID }

// PublicUser is the API view of a User.
type PublicUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.Avatar}
}

// Dialog is a conversation container. Exactly one dialog is public;
// private dialogs carry a party of two distinct user ids.
type Dialog struct {
	ID            string   `json:"id" bson:"_id"`
	Type          string   `json:"type" bson:"type"`
	UpdatedAt     float64  `json:"updated_at" bson:"updated_at"`
	MessagesCount int      `json:"messages_count" bson:"messages_count"`
	Party         []string `json:"party,omitempty" bson:"party,omitempty"`

	// PartyKey is the order-independent identity of a private dialog.
	PartyKey string `json:"-" bson:"party_key,omitempty"`
}

// GetID implements Entity.
func (d Dialog) GetID() string { return d.ID }

// IsPrivate reports whether d is a private dialog.
func (d Dialog) IsPrivate() bool { return d.Type == DialogPrivate }

// HasMember reports whether userID belongs to the dialog's party.
func (d Dialog) HasMember(userID string) bool {
	for _, id := range d.Party {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is an immutable chat line belonging to one dialog.
type Message struct {
	ID      string  `json:"id" bson:"_id"`
	Dialog  string  `json:"dialog" bson:"dialog"`
	Author  string  `json:"author" bson:"author"`
	Date    float64 `json:"date" bson:"date"`
	Content string  `json:"content" bson:"content"`
}

// GetID implements Entity.
func (m Message) GetID() string { return m.ID }

// PartyKey returns the canonical key for the unordered pair {a, b}.
func PartyKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// Timestamp converts t to fractional unix seconds.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable identifier.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
