package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// The game servers speak socket.io text frames over a plain websocket:
// one engine.io type digit, for messages a socket.io type digit, then a
// JSON payload. Events are arrays whose first element is the numeric
// event code.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'

	sioConnect    = '0'
	sioDisconnect = '1'
	sioEvent      = '2'
)

// ErrSocketClosed is returned for writes after the connection ended.
var ErrSocketClosed = errors.New("room: socket closed")

// SocketConn is the sending half of a room's server connection.
type SocketConn interface {
	Emit(code EventCode, args ...any) error
	Close() error
}

// SocketHandler receives the decoded traffic of a socket connection.
// HandleEvent runs on the connection's read goroutine.
type SocketHandler interface {
	HandleEvent(code EventCode, args []json.RawMessage)
	HandleDisconnect(err error)
}

// SocketDialer opens a socket connection to a game server origin such as
// "https://b2ny1.bonk.io".
type SocketDialer func(ctx context.Context, origin string, h SocketHandler) (SocketConn, error)

// socketIO is the production SocketConn over gorilla/websocket.
type socketIO struct {
	conn   *websocket.Conn
	log    *slog.Logger
	h      SocketHandler
	writeM sync.Mutex
	closed atomic.Bool
	done   chan struct{}

	pingInterval time.Duration
	writeTimeout time.Duration
}

type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// DialSocket connects to a game server's socket.io endpoint, completes
// the engine.io handshake and starts the read and keepalive loops.
func DialSocket(ctx context.Context, origin string, h SocketHandler) (SocketConn, error) {
	return dialSocket(ctx, origin, h, slog.Default())
}

func dialSocket(ctx context.Context, origin string, h SocketHandler, log *slog.Logger) (SocketConn, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("room: dial: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = "/socket.io/"
	u.RawQuery = "EIO=3&transport=websocket"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("room: dial %s: %w", u.Host, err)
	}

	s := &socketIO{
		conn:         conn,
		log:          log,
		h:            h,
		done:         make(chan struct{}),
		pingInterval: 25 * time.Second,
		writeTimeout: 10 * time.Second,
	}

	// The server opens with "0{...}" carrying the keepalive cadence.
	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("room: handshake: %w", err)
	}
	if len(msg) == 0 || msg[0] != eioOpen {
		conn.Close()
		return nil, fmt.Errorf("room: handshake: unexpected frame %q", msg)
	}
	var open openPayload
	if err := json.Unmarshal(msg[1:], &open); err != nil {
		conn.Close()
		return nil, fmt.Errorf("room: handshake: %w", err)
	}
	if open.PingInterval > 0 {
		s.pingInterval = time.Duration(open.PingInterval) * time.Millisecond
	}

	go s.readLoop()
	go s.pingLoop()
	return s, nil
}

// Emit sends an event frame "42[code, args...]".
func (s *socketIO) Emit(code EventCode, args ...any) error {
	payload := make([]any, 0, len(args)+1)
	payload = append(payload, int(code))
	payload = append(payload, args...)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("room: emit %d: %w", code, err)
	}
	return s.write(append([]byte{eioMessage, sioEvent}, body...))
}

func (s *socketIO) write(frame []byte) error {
	if s.closed.Load() {
		return ErrSocketClosed
	}
	s.writeM.Lock()
	defer s.writeM.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("room: write: %w", err)
	}
	return nil
}

func (s *socketIO) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	return s.conn.Close()
}

func (s *socketIO) readLoop() {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.CompareAndSwap(false, true) {
				close(s.done)
				s.conn.Close()
				s.h.HandleDisconnect(err)
			}
			return
		}
		if len(msg) == 0 {
			continue
		}
		switch msg[0] {
		case eioPing:
			if err := s.write([]byte{eioPong}); err != nil && !errors.Is(err, ErrSocketClosed) {
				s.log.Warn("pong write failed", "error", err)
			}
		case eioPong:
			// Keepalive answer, nothing to do.
		case eioClose:
			s.Close()
			s.h.HandleDisconnect(nil)
			return
		case eioMessage:
			s.handleMessage(msg[1:])
		}
	}
}

func (s *socketIO) handleMessage(msg []byte) {
	if len(msg) == 0 {
		return
	}
	switch msg[0] {
	case sioConnect:
		// Namespace ack.
	case sioDisconnect:
		s.Close()
		s.h.HandleDisconnect(nil)
	case sioEvent:
		code, args, err := parseEvent(msg[1:])
		if err != nil {
			s.log.Warn("bad event frame", "error", err)
			return
		}
		s.h.HandleEvent(code, args)
	}
}

// parseEvent splits an event payload "[code, args...]" into its code and
// raw argument list.
func parseEvent(body []byte) (EventCode, []json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return 0, nil, err
	}
	if len(parts) == 0 {
		return 0, nil, errors.New("empty event array")
	}
	var code int
	if err := json.Unmarshal(parts[0], &code); err != nil {
		return 0, nil, fmt.Errorf("event code: %w", err)
	}
	return EventCode(code), parts[1:], nil
}

func (s *socketIO) pingLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.write([]byte{eioPing}); err != nil {
				return
			}
		}
	}
}

// decodeArgs unmarshals positional event arguments into the given
// destinations. Extra arguments are ignored, missing ones are an error.
func decodeArgs(args []json.RawMessage, dests ...any) error {
	if len(args) < len(dests) {
		return fmt.Errorf("room: event has %d args, want %d", len(args), len(dests))
	}
	for i, dest := range dests {
		if err := json.Unmarshal(args[i], dest); err != nil {
			return fmt.Errorf("room: event arg %d: %w", i, err)
		}
	}
	return nil
}

// stringArg is a lenient string argument reader for servers that send
// bare strings where JSON is expected.
func stringArg(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	t := strings.TrimSpace(string(raw))
	if t == "" {
		return "", errors.New("room: empty string arg")
	}
	return t, nil
}
