package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// Session ties the REST client, an optional socket and the local State
// together: pushed events are merged into State and the socket follows the
// login state.
type Session struct {
	api   *API
	sock  *Socket
	state *State
	pager *Pager
	log   *slog.Logger

	mu   sync.RWMutex
	user *data.PublicUser
}

// NewSession subscribes to sock, which may be nil for REST-only use.
func NewSession(api *API, sock *Socket, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	state := NewState()
	s := &Session{
		api:   api,
		sock:  sock,
		state: state,
		pager: NewPager(api, state),
		log:   log,
	}
	if sock != nil {
		sock.On(data.EventPublicDialogUpdate, s.mergeDialog)
		sock.On(data.EventPrivateDialogUpdate, s.mergeDialog)
		sock.On(data.EventPublicMessage, s.mergeMessage)
		sock.On(data.EventPrivateMessage, s.mergeMessage)
	}
	return s
}

func (s *Session) mergeDialog(event string, raw json.RawMessage) {
	var d data.Dialog
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Warn("bad dialog payload", "event", event, "err", err)
		return
	}
	s.state.MergeDialog(d)
}

func (s *Session) mergeMessage(event string, raw json.RawMessage) {
	var m data.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		s.log.Warn("bad message payload", "event", event, "err", err)
		return
	}
	s.state.MergeMessage(m)
}

func (s *Session) State() *State { return s.state }
func (s *Session) Pager() *Pager { return s.pager }
func (s *Session) API() *API     { return s.api }

// User returns the logged in user, or nil.
func (s *Session) User() *data.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Start loads the public dialog and, when the client already holds a token,
// joins the socket room and loads the private dialogs.
func (s *Session) Start(ctx context.Context) error {
	pub, err := s.api.PublicDialog(ctx)
	if err != nil {
		return fmt.Errorf("load public dialog: %w", err)
	}
	s.state.MergeDialog(*pub)
	if s.api.Token() == "" {
		return nil
	}
	return s.afterAuth(ctx)
}

func (s *Session) Login(ctx context.Context, email, password string) (*Identity, error) {
	id, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return id, s.adopt(ctx, id)
}

func (s *Session) Register(ctx context.Context, email, name, password string) (*Identity, error) {
	id, err := s.api.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	return id, s.adopt(ctx, id)
}

func (s *Session) adopt(ctx context.Context, id *Identity) error {
	s.mu.Lock()
	u := id.PublicUser
	s.user = &u
	s.mu.Unlock()
	return s.afterAuth(ctx)
}

func (s *Session) afterAuth(ctx context.Context) error {
	if s.sock != nil {
		if err := s.sock.Join(ctx, s.api.Token()); err != nil {
			return fmt.Errorf("join: %w", err)
		}
	}
	ds, err := s.api.PrivateDialogs(ctx)
	if err != nil {
		return fmt.Errorf("load private dialogs: %w", err)
	}
	for _, d := range ds {
		s.state.MergeDialog(d)
	}
	return nil
}

// Logout leaves the socket room, ends the server session and drops every
// private dialog from State.
func (s *Session) Logout(ctx context.Context) error {
	token := s.api.Token()
	if s.sock != nil && token != "" {
		if err := s.sock.Leave(ctx, token); err != nil {
			s.log.Warn("leave failed", "err", err)
		}
	}
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.state.Reset()
	return nil
}

// OpenPrivate finds or creates the dialog with partyID and loads its newest
// page.
func (s *Session) OpenPrivate(ctx context.Context, partyID string) (data.Dialog, error) {
	d, err := s.api.OpenPrivateDialog(ctx, partyID)
	if err != nil {
		return data.Dialog{}, err
	}
	s.state.MergeDialog(*d)
	if err := s.pager.LoadInitial(ctx, d.ID); err != nil {
		return data.Dialog{}, err
	}
	got, _ := s.state.Dialog(d.ID)
	return got, nil
}

// Send posts content to a dialog and merges the stored message.
func (s *Session) Send(ctx context.Context, dialogID, content string) (*data.Message, error) {
	var (
		m   *data.Message
		err error
	)
	if pub, ok := s.state.PublicDialog(); ok && pub.ID == dialogID {
		m, err = s.api.PostPublicMessage(ctx, content)
	} else {
		m, err = s.api.PostPrivateMessage(ctx, dialogID, content)
	}
	if err != nil {
		return nil, err
	}
	s.state.MergeMessage(*m)
	return m, nil
}
