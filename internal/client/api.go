// Package client is the Go client SDK for the chat server: a typed REST
// client, a socket client, and the local state a UI keeps in sync with both.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Identity is the body of a successful register or login.
type Identity struct {
	data.PublicUser
	Hash string `json:"hash"`
}

// API is a REST client. It is safe for concurrent use.
type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI returns a client for the server at baseURL. A nil hc uses
// http.DefaultClient.
func NewAPI(baseURL string, hc *http.Client) *API {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// BaseURL returns the server address the client talks to.
func (c *API) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token sent with every request.
func (c *API) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *API) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *API) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func idQuery(id string) url.Values { return url.Values{"id": {id}} }

// Register creates an account and adopts its token.
func (c *API) Register(ctx context.Context, email, name, password string) (*Identity, error) {
	var id Identity
	err := c.do(ctx, http.MethodPost, "/api/auth/registrate", nil, map[string]string{
		"email": email, "name": name, "password": password,
	}, &id)
	if err != nil {
		return nil, err
	}
	c.SetToken(id.Hash)
	return &id, nil
}

// Login authenticates and adopts the returned token.
func (c *API) Login(ctx context.Context, email, password string) (*Identity, error) {
	var id Identity
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": email, "password": password,
	}, &id)
	if err != nil {
		return nil, err
	}
	c.SetToken(id.Hash)
	return &id, nil
}

// Logout ends the session and forgets the token.
func (c *API) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *API) PublicDialog(ctx context.Context) (*data.Dialog, error) {
	var d data.Dialog
	if err := c.do(ctx, http.MethodGet, "/api/messenger/dialog/public", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindPrivateDialog looks up the dialog with partyID without creating it.
func (c *API) FindPrivateDialog(ctx context.Context, partyID string) (*data.Dialog, error) {
	var d data.Dialog
	if err := c.do(ctx, http.MethodGet, "/api/messenger/dialog/private", idQuery(partyID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// OpenPrivateDialog finds or creates the dialog with partyID.
func (c *API) OpenPrivateDialog(ctx context.Context, partyID string) (*data.Dialog, error) {
	var d data.Dialog
	if err := c.do(ctx, http.MethodPost, "/api/messenger/dialog/private", idQuery(partyID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *API) PrivateDialogs(ctx context.Context) ([]data.Dialog, error) {
	var ds []data.Dialog
	if err := c.do(ctx, http.MethodGet, "/api/messenger/dialogs/private", nil, nil, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (c *API) Dialog(ctx context.Context, id string) (*data.Dialog, error) {
	var d data.Dialog
	if err := c.do(ctx, http.MethodGet, "/api/messenger/dialog", idQuery(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Messages returns up to one page of messages older than before, oldest
// first. A zero before asks for the newest page.
func (c *API) Messages(ctx context.Context, dialogID string, before float64) ([]data.Message, error) {
	q := idQuery(dialogID)
	if before > 0 {
		q.Set("date", strconv.FormatFloat(before, 'f', -1, 64))
	}
	var ms []data.Message
	if err := c.do(ctx, http.MethodGet, "/api/messenger/messages", q, nil, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (c *API) PostPublicMessage(ctx context.Context, content string) (*data.Message, error) {
	var m data.Message
	err := c.do(ctx, http.MethodPost, "/api/messenger/message/public", nil, map[string]string{"content": content}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *API) PostPrivateMessage(ctx context.Context, dialogID, content string) (*data.Message, error) {
	var m data.Message
	err := c.do(ctx, http.MethodPost, "/api/messenger/message/private", idQuery(dialogID), map[string]string{"content": content}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *API) User(ctx context.Context, id string) (*data.PublicUser, error) {
	var u data.PublicUser
	if err := c.do(ctx, http.MethodGet, "/api/users/user", idQuery(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *API) Users(ctx context.Context, ids []string) ([]data.PublicUser, error) {
	var us []data.PublicUser
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := c.do(ctx, http.MethodGet, "/api/users/users", q, nil, &us); err != nil {
		return nil, err
	}
	return us, nil
}

// SearchUsers finds users whose name contains q.
func (c *API) SearchUsers(ctx context.Context, q string) ([]data.PublicUser, error) {
	var us []data.PublicUser
	if err := c.do(ctx, http.MethodGet, "/api/users/search", url.Values{"q": {q}}, nil, &us); err != nil {
		return nil, err
	}
	return us, nil
}
