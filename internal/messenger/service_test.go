package messenger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/mocks"
)

// tickingClock advances one second per call so message dates never collide.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	svc   *Service
	store *data.MemoryStore
	bc    *mocks.MockBroadcaster
	alice *data.User
	bob   *data.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := data.NewMemoryStore()
	bc := mocks.NewMockBroadcaster(ctrl)
	svc := New(store, bc, WithClock(tickingClock()))

	ctx := context.Background()
	_, err := svc.Bootstrap(ctx)
	require.NoError(t, err)

	alice := &data.User{ID: data.NewID(), Email: "alice@example.com", Name: "Alice"}
	bob := &data.User{ID: data.NewID(), Email: "bob@example.com", Name: "Bob"}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	return &fixture{svc: svc, store: store, bc: bc, alice: alice, bob: bob}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.PublicDialog(ctx)
	require.NoError(t, err)
	again, err := f.svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, data.DialogPublic, again.Type)
}

func TestPublicDialogBeforeBootstrap(t *testing.T) {
	svc := New(data.NewMemoryStore(), mocks.NewMockBroadcaster(gomock.NewController(t)))
	_, err := svc.PublicDialog(context.Background())
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetOrCreatePrivateDialog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bc.EXPECT().
		EmitToRooms(data.EventPrivateDialogUpdate, gomock.Any(), f.alice.ID, f.bob.ID).
		Times(1)

	d1, err := f.svc.GetOrCreatePrivateDialog(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.Equal(t, 0, d1.MessagesCount)
	require.Equal(t, []string{f.alice.ID, f.bob.ID}, d1.Party)

	d2, err := f.svc.GetOrCreatePrivateDialog(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	d3, err := f.svc.GetOrCreatePrivateDialog(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)

	require.Equal(t, d1.ID, d2.ID)
	require.Equal(t, d1.ID, d3.ID)

	found, err := f.svc.FindPrivateDialog(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	require.Equal(t, d1.ID, found.ID)
}

func TestGetOrCreatePrivateDialog_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bc.EXPECT().EmitToRooms(data.EventPrivateDialogUpdate, gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	const callers = 20
	ids := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := f.alice.ID, f.bob.ID
			if i%2 == 0 {
				a, b = b, a
			}
			d, err := f.svc.GetOrCreatePrivateDialog(ctx, a, b)
			if err == nil {
				ids <- d.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	var first string
	n := 0
	for id := range ids {
		if first == "" {
			first = id
		}
		require.Equal(t, first, id)
		n++
	}
	require.Equal(t, callers, n)

	dialogs, err := f.svc.ListPrivateDialogs(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, dialogs, 1)
}

func TestGetOrCreatePrivateDialog_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetOrCreatePrivateDialog(ctx, f.alice.ID, f.alice.ID)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.GetOrCreatePrivateDialog(ctx, f.alice.ID, "")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.GetOrCreatePrivateDialog(ctx, f.alice.ID, "ghost")
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.FindPrivateDialog(ctx, f.alice.ID, f.bob.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
	require.Equal(t, "Dialog Not Found", apperr.Message(err))
}

func TestGetDialog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pub, err := f.svc.PublicDialog(ctx)
	require.NoError(t, err)
	got, err := f.svc.GetDialog(ctx, pub.ID)
	require.NoError(t, err)
	require.Equal(t, pub.ID, got.ID)

	_, err = f.svc.GetDialog(ctx, "missing")
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}
