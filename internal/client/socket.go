package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"nhooyr.io/websocket"

	"github.com/PaulBabatuyi/chater/internal/realtime"
)

// ErrSocketClosed is returned by requests on a socket whose read loop ended.
var ErrSocketClosed = errors.New("socket closed")

const readLimit = 64 << 10

// Handler receives a pushed event. Handlers run on the read loop in arrival
// order and must not block.
type Handler func(event string, payload json.RawMessage)

// Socket is a client for the /socket endpoint.
type Socket struct {
	conn   *websocket.Conn
	log    *slog.Logger
	nextID atomic.Int64

	mu       sync.Mutex
	handlers map[string][]Handler
	pending  map[int64]chan realtime.Ack

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// DialSocket connects to the socket endpoint of the server at baseURL
// (http or https scheme) and starts the read loop.
func DialSocket(ctx context.Context, baseURL string, log *slog.Logger) (*Socket, error) {
	if log == nil {
		log = slog.Default()
	}
	wsURL := strings.Replace(baseURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.TrimRight(wsURL, "/") + "/socket"

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	conn.SetReadLimit(readLimit)

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &Socket{
		conn:     conn,
		log:      log,
		handlers: make(map[string][]Handler),
		pending:  make(map[int64]chan realtime.Ack),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.readLoop(loopCtx)
	return s, nil
}

// On registers h for event.
func (s *Socket) On(event string, h Handler) {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], h)
	s.mu.Unlock()
}

// Join attaches the connection to the room of the token's user.
func (s *Socket) Join(ctx context.Context, token string) error {
	return s.request(ctx, realtime.EventJoin, realtime.TokenPayload{Hash: token})
}

// Leave detaches the connection from the room of the token's user.
func (s *Socket) Leave(ctx context.Context, token string) error {
	return s.request(ctx, realtime.EventLeave, realtime.TokenPayload{Hash: token})
}

// request sends an event and waits for its ack.
func (s *Socket) request(ctx context.Context, event string, payload any) error {
	id := s.nextID.Add(1)
	frame, err := realtime.Encode(event, id, payload)
	if err != nil {
		return err
	}

	ch := make(chan realtime.Ack, 1)
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrSocketClosed
	}
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.pending != nil {
			delete(s.pending, id)
		}
		s.mu.Unlock()
	}()

	if err := s.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("%s: %w", event, err)
	}

	select {
	case a := <-ch:
		if a.Err != "" {
			return fmt.Errorf("%s: %s", event, a.Err)
		}
		return nil
	case <-s.done:
		return ErrSocketClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Socket) readLoop(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		close(s.done)
	}()

	for {
		_, raw, err := s.conn.Read(ctx)
		if err != nil {
			s.err = err
			return
		}

		var f realtime.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			s.log.Warn("malformed frame", "err", err)
			continue
		}

		if f.Event == realtime.EventAck {
			var a realtime.Ack
			_ = json.Unmarshal(f.Data, &a)
			s.mu.Lock()
			ch, ok := s.pending[f.ID]
			s.mu.Unlock()
			if ok {
				select {
				case ch <- a:
				default:
				}
			}
			continue
		}

		s.mu.Lock()
		hs := append([]Handler(nil), s.handlers[f.Event]...)
		s.mu.Unlock()
		for _, h := range hs {
			h(f.Event, f.Data)
		}
	}
}

// Done is closed when the read loop exits.
func (s *Socket) Done() <-chan struct{} { return s.done }

// Err reports why the read loop exited. It is valid after Done is closed.
func (s *Socket) Err() error {
	<-s.done
	return s.err
}

// Close closes the connection and waits for the read loop to exit.
func (s *Socket) Close() error {
	err := s.conn.Close(websocket.StatusNormalClosure, "client disconnect")
	s.cancel()
	<-s.done
	return err
}
