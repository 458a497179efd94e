package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PaulBabatuyi/chater/internal/auth"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from the peer.
	maxMessageSize = 64 << 10

	// Outbound frames queued per connection before it is considered stuck.
	sendBuffer = 256
)

// ErrSlowConsumer is returned by Send when the outbound queue is full.
var ErrSlowConsumer = errors.New("send buffer full")

// ErrClosed is returned by Send after the connection has been closed.
var ErrClosed = errors.New("connection closed")

// TokenVerifier decodes identity tokens presented on join and leave.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// Conn is one websocket client. readPump handles join and leave requests,
// writePump drains the outbound queue and keeps the connection alive.
type Conn struct {
	id       string
	ws       *websocket.Conn
	hub      *Hub
	verifier TokenVerifier
	log      *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the connection id.
func (c *Conn) ID() string { return c.id }

// Send queues a frame without blocking.
func (c *Conn) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// Close stops both pumps. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.Close()
		c.log.Debug("socket disconnected")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("socket read failed", "err", err)
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.log.Debug("ignoring malformed frame", "err", err)
			continue
		}
		c.handle(f)
	}
}

func (c *Conn) handle(f Frame) {
	switch f.Event {
	case EventJoin:
		c.ack(f.ID, c.join(f.Data))
	case EventLeave:
		c.ack(f.ID, c.leave(f.Data))
	default:
		c.ack(f.ID, errors.New("unknown event"))
	}
}

func (c *Conn) claims(data json.RawMessage) (*auth.Claims, error) {
	var p TokenPayload
	if len(data) == 0 || json.Unmarshal(data, &p) != nil || p.Hash == "" {
		return nil, errors.New("hash is required")
	}
	claims, err := c.verifier.VerifyToken(p.Hash)
	if err != nil {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (c *Conn) join(data json.RawMessage) error {
	claims, err := c.claims(data)
	if err != nil {
		return err
	}
	if err := c.hub.Join(c.id, claims.UserID); err != nil {
		return err
	}
	c.log.Debug("joined room", "user", claims.UserID)
	return nil
}

func (c *Conn) leave(data json.RawMessage) error {
	claims, err := c.claims(data)
	if err != nil {
		return err
	}
	if c.hub.Leave(c.id, claims.UserID) {
		c.log.Debug("left room", "user", claims.UserID)
	}
	return nil
}

func (c *Conn) ack(id int64, err error) {
	var a Ack
	if err != nil {
		a.Err = err.Error()
	}
	frame, encErr := Encode(EventAck, id, a)
	if encErr != nil {
		c.log.Error("encode ack", "err", encErr)
		return
	}
	if sendErr := c.Send(frame); sendErr != nil {
		c.log.Warn("ack dropped", "err", sendErr)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		// unblocks readPump, which then unregisters the connection
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// Server upgrades HTTP requests to socket connections registered in a hub.
type Server struct {
	hub      *Hub
	verifier TokenVerifier
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer returns a socket endpoint bound to hub. Origins are not
// restricted; the socket carries no ambient credentials.
func NewServer(hub *Hub, verifier TokenVerifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		hub:      hub,
		verifier: verifier,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and starts the connection pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	id := uuid.NewString()
	c := &Conn{
		id:       id,
		ws:       ws,
		hub:      s.hub,
		verifier: s.verifier,
		log:      s.log.With("conn", id),
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	s.hub.Register(id, c)
	c.log.Debug("socket connected", "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}
