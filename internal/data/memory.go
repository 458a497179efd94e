package data

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps users, dialogs and messages in process memory. One lock
// guards all three collections so a read-modify-write never interleaves with
// another writer.
type MemoryStore struct {
	mu       sync.RWMutex
	users    *Collection[User]
	dialogs  *Collection[Dialog]
	messages *Collection[Message]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    NewCollection[User](),
		dialogs:  NewCollection[Dialog](),
		messages: NewCollection[Message](),
	}
}

func cloneDialog(d Dialog) *Dialog {
	d.Party = slices.Clone(d.Party)
	return &d
}

func byDate(a, b Message) int { return cmp.Compare(a.Date, b.Date) }

// CreateUser inserts u, rejecting a duplicate email with ErrConflict.
func (s *MemoryStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.Find(func(x User) bool { return x.Email == u.Email }); ok {
		return ErrConflict
	}
	s.users.Insert(*u)
	return nil
}

// GetUser looks a user up by id.
func (s *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.Find(func(x User) bool { return x.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// GetUserByEmail looks a user up by normalized email.
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.Find(func(x User) bool { return x.Email == email })
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// ListUsers returns the users whose ids are listed. Unknown ids are skipped.
func (s *MemoryStore) ListUsers(_ context.Context, ids []string) ([]*User, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.users.Select(Query[User]{Where: func(u User) bool {
		_, ok := want[u.ID]
		return ok
	}})
	return toPointers(found), nil
}

// SearchUsers returns users whose name contains q (case-sensitive).
func (s *MemoryStore) SearchUsers(_ context.Context, q string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.users.Select(Query[User]{Where: func(u User) bool {
		return strings.Contains(u.Name, q)
	}})
	return toPointers(found), nil
}

// EnsurePublicDialog inserts d unless a public dialog already exists, and
// returns whichever public dialog is stored.
func (s *MemoryStore) EnsurePublicDialog(_ context.Context, d *Dialog) (*Dialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.dialogs.Find(isPublic); ok {
		return cloneDialog(existing), nil
	}
	s.dialogs.Insert(*cloneDialog(*d))
	return cloneDialog(*d), nil
}

func isPublic(d Dialog) bool { return d.Type == DialogPublic }

// PublicDialog returns the public dialog.
func (s *MemoryStore) PublicDialog(_ context.Context) (*Dialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dialogs.Find(isPublic)
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDialog(d), nil
}

// GetDialog looks a dialog up by id.
func (s *MemoryStore) GetDialog(_ context.Context, id string) (*Dialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dialogs.Find(func(x Dialog) bool { return x.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDialog(d), nil
}

func (s *MemoryStore) findPrivate(key string) (Dialog, bool) {
	return s.dialogs.Find(func(x Dialog) bool {
		return x.Type == DialogPrivate && x.PartyKey == key
	})
}

// FindPrivateDialog returns the private dialog between a and b in either order.
func (s *MemoryStore) FindPrivateDialog(_ context.Context, a, b string) (*Dialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.findPrivate(PartyKey(a, b))
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDialog(d), nil
}

// FindOrCreatePrivateDialog returns the existing dialog for d's party, or
// inserts d. The boolean reports whether d was inserted.
func (s *MemoryStore) FindOrCreatePrivateDialog(_ context.Context, d *Dialog) (*Dialog, bool, error) {
	key := PartyKey(d.Party[0], d.Party[1])

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.findPrivate(key); ok {
		return cloneDialog(existing), false, nil
	}
	created := cloneDialog(*d)
	created.PartyKey = key
	s.dialogs.Insert(*created)
	return cloneDialog(*created), true, nil
}

// ListPrivateDialogs returns every private dialog userID takes part in.
func (s *MemoryStore) ListPrivateDialogs(_ context.Context, userID string) ([]*Dialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.dialogs.Select(Query[Dialog]{Where: func(d Dialog) bool {
		return d.IsPrivate() && d.HasMember(userID)
	}})
	out := make([]*Dialog, len(found))
	for i, d := range found {
		out[i] = cloneDialog(d)
	}
	return out, nil
}

// AppendMessage bumps the dialog counters and inserts m in one step.
func (s *MemoryStore) AppendMessage(_ context.Context, m *Message) (*Dialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dialogs.Find(func(x Dialog) bool { return x.ID == m.Dialog })
	if !ok {
		return nil, ErrNotFound
	}
	d.MessagesCount++
	d.UpdatedAt = max(d.UpdatedAt, m.Date)
	s.dialogs.Update(d)
	s.messages.Insert(*m)
	return cloneDialog(d), nil
}

// ListMessages returns up to limit of the newest messages of a dialog older
// than before, in ascending date order. A zero before means no cursor.
func (s *MemoryStore) ListMessages(_ context.Context, dialogID string, before float64, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.messages.Select(Query[Message]{
		Where: func(m Message) bool {
			return m.Dialog == dialogID && (before <= 0 || m.Date < before)
		},
		Less:  byDate,
		Limit: limit,
	})
	return toPointers(found), nil
}

// Populate bulk-loads records without checks. Used to seed demo data.
func (s *MemoryStore) Populate(_ context.Context, users []*User, dialogs []*Dialog, messages []*Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range users {
		s.users.Insert(*u)
	}
	for _, d := range dialogs {
		c := cloneDialog(*d)
		if c.IsPrivate() && len(c.Party) == 2 {
			c.PartyKey = PartyKey(c.Party[0], c.Party[1])
		}
		s.dialogs.Insert(*c)
	}
	ms := make([]Message, len(messages))
	for i, m := range messages {
		ms[i] = *m
	}
	s.messages.Concat(ms...)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func toPointers[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
