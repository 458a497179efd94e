package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/middleware"
)

func TestRegistrate(t *testing.T) {
	env := newTestEnv(t)

	body := strings.NewReader(`{"email":"Alice@Example.com","name":"Alice","password":"password"}`)
	resp, err := http.Post(env.srv.URL+"/api/auth/registrate", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	names := map[string]bool{}
	for _, c := range resp.Cookies() {
		names[c.Name] = true
		require.True(t, c.HttpOnly, "cookie %s must be httpOnly", c.Name)
	}
	for _, want := range []string{"id", "email", "name", "hash"} {
		require.True(t, names[want], "missing cookie %s", want)
	}

	var dup errorBody
	code := env.call(t, http.MethodPost, "/api/auth/registrate", "", map[string]string{
		"email": "alice@example.com", "name": "Other", "password": "password",
	}, &dup)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Bad Request: User with this email already exists", dup.Error)

	var bad errorBody
	code = env.call(t, http.MethodPost, "/api/auth/registrate", "", map[string]string{"email": "x@example.com"}, &bad)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "name is required", bad.Error)
}

func TestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "bob@example.com", "Bob")

	var s session
	code := env.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "BOB@example.com", "password": "password",
	}, &s)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, reg.ID, s.ID)
	require.NotEmpty(t, s.Hash)

	var e errorBody
	code = env.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "nope",
	}, &e)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "No matches found", e.Error)

	require.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, "/api/auth/logout", "", nil, nil))
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/auth/logout", s.Hash, nil, nil))
}

func TestLoginIsRateLimited(t *testing.T) {
	// registration and the first login spend the whole burst for this email
	env := newTestEnvWith(t, data.NewMemoryStore(), middleware.NewLimiterStore(1, 2, time.Minute))
	env.register(t, "carol@example.com", "Carol")

	limited := false
	for i := 0; i < 3 && !limited; i++ {
		code := env.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "carol@example.com", "password": "wrong",
		}, nil)
		limited = code == http.StatusTooManyRequests
	}
	require.True(t, limited)
}

func TestUsersEndpoints(t *testing.T) {
	env := newTestEnv(t)
	anna := env.register(t, "anna@example.com", "Anna")
	hannah := env.register(t, "hannah@example.com", "Hannah")
	env.register(t, "bob@example.com", "Bob")

	var u map[string]any
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/users/user?id="+anna.ID, "", nil, &u))
	require.Equal(t, "Anna", u["name"])
	require.NotContains(t, u, "password_hash")
	require.NotContains(t, u, "PasswordHash")

	require.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/users/user?id=missing", "", nil, nil))

	var list []data.PublicUser
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/users/users?ids="+anna.ID+","+hannah.ID+",missing", "", nil, &list))
	require.Len(t, list, 2)

	list = nil
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/users/search?q=nn", "", nil, &list))
	require.Len(t, list, 2)

	require.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/users/search?q=", "", nil, nil))
}

func TestHealthAndUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/healthz", "", nil, nil))
	require.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/nope", "", nil, nil))
}
