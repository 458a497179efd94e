package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chater/internal/client"
)

func newClientSession(t *testing.T, env *testEnv) *client.Session {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sock, err := client.DialSocket(t.Context(), env.srv.URL, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sock.Close() })

	sess := client.NewSession(client.NewAPI(env.srv.URL, nil), sock, log)
	require.NoError(t, sess.Start(t.Context()))
	return sess
}

func TestClientSessionSync(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := newClientSession(t, env)
	bob := newClientSession(t, env)

	aliceID, err := alice.Register(ctx, "alice@example.com", "Alice", "password")
	require.NoError(t, err)
	bobID, err := bob.Register(ctx, "bob@example.com", "Bob", "password")
	require.NoError(t, err)

	d, err := alice.OpenPrivate(ctx, bobID.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := bob.State().Dialog(d.ID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err = alice.Send(ctx, d.ID, "hi bob")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, ok := bob.State().Dialog(d.ID)
		return ok && got.MessagesCount == 1 && bob.State().Count(d.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, alice.State().Count(d.ID))

	pub, ok := alice.State().PublicDialog()
	require.True(t, ok)
	_, err = bob.Send(ctx, pub.ID, "hello everyone")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return alice.State().Count(pub.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.Logout(ctx))
	require.Nil(t, alice.User())
	require.Empty(t, alice.State().PrivateDialogs(bobID.ID))
	require.Equal(t, 1, alice.State().Count(pub.ID))
	require.Zero(t, env.hub.RoomSize(aliceID.ID))
}
