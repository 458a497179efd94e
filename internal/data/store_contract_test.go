package data

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		alice := &User{ID: NewID(), Email: "alice@example.com", Name: "Alice", PasswordHash: "x"}
		bob := &User{ID: NewID(), Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
		req.NoError(s.CreateUser(ctx, alice))
		req.NoError(s.CreateUser(ctx, bob))
		req.ErrorIs(s.CreateUser(ctx, &User{ID: NewID(), Email: "alice@example.com"}), ErrConflict)

		got, err := s.GetUserByEmail(ctx, "alice@example.com")
		req.NoError(err)
		req.Equal(alice.ID, got.ID)

		_, err = s.GetUser(ctx, "missing")
		req.ErrorIs(err, ErrNotFound)

		list, err := s.ListUsers(ctx, []string{alice.ID, "missing", bob.ID})
		req.NoError(err)
		req.Len(list, 2)

		found, err := s.SearchUsers(ctx, "li")
		req.NoError(err)
		req.Len(found, 1)
		req.Equal("Alice", found[0].Name)

		found, err = s.SearchUsers(ctx, "ALI")
		req.NoError(err)
		req.Empty(found)
	})

	t.Run("public dialog bootstrap is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		_, err := s.PublicDialog(ctx)
		req.ErrorIs(err, ErrNotFound)

		first, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic, UpdatedAt: 1})
		req.NoError(err)
		second, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic, UpdatedAt: 2})
		req.NoError(err)
		req.Equal(first.ID, second.ID)

		got, err := s.PublicDialog(ctx)
		req.NoError(err)
		req.Equal(first.ID, got.ID)
	})

	t.Run("private dialog find or create", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		d, created, err := s.FindOrCreatePrivateDialog(ctx, &Dialog{ID: NewID(), Type: DialogPrivate, Party: []string{"a", "b"}})
		req.NoError(err)
		req.True(created)

		again, created, err := s.FindOrCreatePrivateDialog(ctx, &Dialog{ID: NewID(), Type: DialogPrivate, Party: []string{"b", "a"}})
		req.NoError(err)
		req.False(created)
		req.Equal(d.ID, again.ID)

		found, err := s.FindPrivateDialog(ctx, "b", "a")
		req.NoError(err)
		req.Equal(d.ID, found.ID)

		_, err = s.FindPrivateDialog(ctx, "a", "c")
		req.ErrorIs(err, ErrNotFound)

		_, _, err = s.FindOrCreatePrivateDialog(ctx, &Dialog{ID: NewID(), Type: DialogPrivate, Party: []string{"a", "c"}})
		req.NoError(err)

		mine, err := s.ListPrivateDialogs(ctx, "a")
		req.NoError(err)
		req.Len(mine, 2)
		theirs, err := s.ListPrivateDialogs(ctx, "c")
		req.NoError(err)
		req.Len(theirs, 1)
	})

	t.Run("concurrent find or create yields one dialog", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const callers = 16
		ids := make([]string, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				party := []string{"x", "y"}
				if i%2 == 1 {
					party = []string{"y", "x"}
				}
				d, _, err := s.FindOrCreatePrivateDialog(ctx, &Dialog{ID: NewID(), Type: DialogPrivate, Party: party})
				if err == nil {
					ids[i] = d.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			require.Equal(t, ids[0], id)
		}
		all, err := s.ListPrivateDialogs(ctx, "x")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("append keeps counters and pages by cursor", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		d, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic, UpdatedAt: 1})
		req.NoError(err)

		var last *Dialog
		for i := 1; i <= 20; i++ {
			last, err = s.AppendMessage(ctx, &Message{
				ID: NewID(), Dialog: d.ID, Author: "a", Date: float64(100 + i), Content: fmt.Sprintf("m%d", i),
			})
			req.NoError(err)
		}
		req.Equal(20, last.MessagesCount)
		req.Equal(float64(120), last.UpdatedAt)

		stored, err := s.GetDialog(ctx, d.ID)
		req.NoError(err)
		req.Equal(20, stored.MessagesCount)

		page, err := s.ListMessages(ctx, d.ID, 0, PageSize)
		req.NoError(err)
		req.Len(page, 20)
		for i := 1; i < len(page); i++ {
			req.Less(page[i-1].Date, page[i].Date)
		}

		older, err := s.ListMessages(ctx, d.ID, page[9].Date, PageSize)
		req.NoError(err)
		req.Len(older, 9)
		for _, m := range older {
			req.Less(m.Date, page[9].Date)
		}

		_, err = s.AppendMessage(ctx, &Message{ID: NewID(), Dialog: "missing", Date: 1, Content: "x"})
		req.ErrorIs(err, ErrNotFound)
	})

	t.Run("history keeps the newest page", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		d, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic})
		req.NoError(err)
		for i := 1; i <= 25; i++ {
			_, err = s.AppendMessage(ctx, &Message{ID: NewID(), Dialog: d.ID, Date: float64(i), Content: "m"})
			req.NoError(err)
		}

		page, err := s.ListMessages(ctx, d.ID, 0, PageSize)
		req.NoError(err)
		req.Len(page, PageSize)
		req.Equal(float64(6), page[0].Date)
		req.Equal(float64(25), page[len(page)-1].Date)
	})

	t.Run("concurrent appends count every message and keep the newest date", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		d, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic, UpdatedAt: 1})
		req.NoError(err)

		const writers = 24
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// Dates run against the goroutine order so late writers carry old dates.
				_, err := s.AppendMessage(ctx, &Message{
					ID: NewID(), Dialog: d.ID, Author: "a", Date: float64(1000 - i), Content: fmt.Sprintf("m%d", i),
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			req.NoError(err)
		}

		stored, err := s.GetDialog(ctx, d.ID)
		req.NoError(err)
		req.Equal(writers, stored.MessagesCount)
		req.Equal(float64(1000), stored.UpdatedAt)
	})

	t.Run("an older date never moves updated_at back", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		req := require.New(t)

		d, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic, UpdatedAt: 1})
		req.NoError(err)

		after, err := s.AppendMessage(ctx, &Message{ID: NewID(), Dialog: d.ID, Date: 50, Content: "new"})
		req.NoError(err)
		req.Equal(float64(50), after.UpdatedAt)

		after, err = s.AppendMessage(ctx, &Message{ID: NewID(), Dialog: d.ID, Date: 40, Content: "late"})
		req.NoError(err)
		req.Equal(2, after.MessagesCount)
		req.Equal(float64(50), after.UpdatedAt)

		page, err := s.ListMessages(ctx, d.ID, 0, PageSize)
		req.NoError(err)
		req.Len(page, 2)
		req.Equal("late", page[0].Content)
	})
}
