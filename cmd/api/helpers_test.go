package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chater/internal/account"
	"github.com/PaulBabatuyi/chater/internal/auth"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/messenger"
	"github.com/PaulBabatuyi/chater/internal/middleware"
	"github.com/PaulBabatuyi/chater/internal/realtime"
)

func init() { gin.SetMode(gin.TestMode) }

type testEnv struct {
	srv   *httptest.Server
	hub   *realtime.Hub
	store data.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, data.NewMemoryStore(), nil)
}

// newTestEnvWith serves the API over store. A nil limiter allows every request.
func newTestEnvWith(t *testing.T, store data.Store, limiter *middleware.LimiterStore) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	hub := realtime.NewHub(log)

	msgr := messenger.New(store, hub, messenger.WithLogger(log))
	_, err := msgr.Bootstrap(t.Context())
	require.NoError(t, err)

	if limiter == nil {
		limiter = middleware.NewLimiterStore(6000, 1000, time.Minute)
	}
	t.Cleanup(limiter.Stop)

	s := newServer(account.New(store, jwtMgr, log), msgr, limiter, realtime.NewServer(hub, jwtMgr, log), log)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		hub.Shutdown()
		ts.Close()
	})
	return &testEnv{srv: ts, hub: hub, store: store}
}

// call performs a JSON request and decodes the response body into out when
// out is not nil. It returns the status code.
func (e *testEnv) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type session struct {
	data.PublicUser
	Hash string `json:"hash"`
}

func (e *testEnv) register(t *testing.T, email, name string) session {
	t.Helper()
	var s session
	code := e.call(t, http.MethodPost, "/api/auth/registrate", "", map[string]string{
		"email": email, "name": name, "password": "password",
	}, &s)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, s.Hash)
	return s
}

type errorBody struct {
	Error string `json:"error"`
}
