// Package messenger resolves dialogs, ingests messages and announces both to
// connected clients.
package messenger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/data"
)

//go:generate mockgen -destination=../mocks/mock_broadcaster.go -package=mocks github.com/PaulBabatuyi/chater/internal/messenger Broadcaster

// Broadcaster pushes events to sockets. Implementations are fire-and-forget.
type Broadcaster interface {
	// Broadcast sends to every connection.
	Broadcast(event string, payload any)
	// EmitToRooms sends to the connections joined to the given user rooms.
	EmitToRooms(event string, payload any, rooms ...string)
}

// Service implements the dialog and message operations.
type Service struct {
	store data.Store
	bc    Broadcaster
	log   *slog.Logger
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New returns a Service over store announcing through bc.
func New(store data.Store, bc Broadcaster, opts ...Option) *Service {
	s := &Service{
		store: store,
		bc:    bc,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeErr classifies a store failure.
func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, notFound)
	case errors.Is(err, data.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, err, err.Error())
	default:
		return fmt.Errorf("store: %w", err)
	}
}
