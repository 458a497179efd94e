package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(*testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, _, err := s.FindOrCreatePrivateDialog(ctx, &Dialog{ID: NewID(), Type: DialogPrivate, Party: []string{"a", "b"}})
	require.NoError(t, err)

	d.Party[0] = "mallory"
	d.MessagesCount = 99

	stored, err := s.GetDialog(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, stored.Party)
	require.Zero(t, stored.MessagesCount)
}

func TestMemoryStore_EqualDatesKeepInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, err := s.EnsurePublicDialog(ctx, &Dialog{ID: NewID(), Type: DialogPublic})
	require.NoError(t, err)
	for _, content := range []string{"first", "second", "third"} {
		_, err := s.AppendMessage(ctx, &Message{ID: NewID(), Dialog: d.ID, Date: 42, Content: content})
		require.NoError(t, err)
	}

	page, err := s.ListMessages(ctx, d.ID, 0, PageSize)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, "first", page[0].Content)
	require.Equal(t, "third", page[2].Content)
}

func TestMemoryStore_Populate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u := &User{ID: "u1", Email: "u1@example.com", Name: "U1"}
	d := &Dialog{ID: "d1", Type: DialogPrivate, Party: []string{"u1", "u2"}, MessagesCount: 1, UpdatedAt: 5}
	m := &Message{ID: "m1", Dialog: "d1", Author: "u1", Date: 5, Content: "hi"}
	require.NoError(t, s.Populate(ctx, []*User{u}, []*Dialog{d}, []*Message{m}))

	got, err := s.FindPrivateDialog(ctx, "u2", "u1")
	require.NoError(t, err)
	require.Equal(t, "d1", got.ID)

	msgs, err := s.ListMessages(ctx, "d1", 0, PageSize)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}
