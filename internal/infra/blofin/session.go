package blofin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SessionState tracks the private socket lifecycle. Transitions are strictly
// forward except Closed, which is reachable from any state.
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateConnected
	StateAuthenticating
	StateAuthenticated
	StateSubscribed
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session owns one private websocket connection: it authenticates it,
// subscribes to a channel, and exposes a deadline-bounded wait for a
// correlated inbound event.
//
// The read pump starts at connect time, so frames that arrive while the
// caller is busy elsewhere (e.g. issuing the placement call) are buffered
// and later evaluated in arrival order. Exactly one goroutine may drive the
// session's operations; Close is safe from anywhere.
type Session struct {
	signer *Signer

	mu      sync.Mutex
	state   SessionState
	conn    *websocket.Conn
	writeMu sync.Mutex

	frames chan []byte
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	// AuthTimeout bounds the wait for the login ack frame.
	AuthTimeout time.Duration
	// PingInterval paces the keepalive; the exchange drops quiet sockets.
	PingInterval time.Duration
	// ReadTimeout bounds a single read; keepalive traffic keeps it fed.
	ReadTimeout time.Duration

	now func() time.Time
}

// NewSession creates a session. Connect must be called before any other
// operation.
func NewSession(signer *Signer) *Session {
	return &Session{
		signer:       signer,
		state:        StateDisconnected,
		frames:       make(chan []byte, 256),
		done:         make(chan struct{}),
		AuthTimeout:  5 * time.Second,
		PingInterval: 29 * time.Second,
		ReadTimeout:  60 * time.Second,
		now:          time.Now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the private endpoint and starts the read pump.
func (s *Session) Connect(ctx context.Context, wsURL string) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: connect from state %s", ErrConnection, state)
	}
	s.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrConnection, wsURL, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateConnected
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readPump(conn)
	if s.PingInterval > 0 {
		s.wg.Add(1)
		go s.pingLoop()
	}

	slog.Info("ws connected", "url", wsURL)
	return nil
}

// Authenticate sends the login op and waits for the exchange's login ack
// frame. A non-success ack code fails the session.
func (s *Session) Authenticate(ctx context.Context) error {
	if err := s.advance(StateConnected, StateAuthenticating); err != nil {
		return err
	}

	login := loginRequest{Op: "login", Args: []loginArg{s.signer.LoginArgs(s.now())}}
	if err := s.writeJSON(login); err != nil {
		return fmt.Errorf("%w: send login: %v", ErrSession, err)
	}

	ack, err := s.AwaitEvent(ctx, func(f *PushFrame) bool { return f.Event == "login" }, s.AuthTimeout)
	if err != nil {
		return fmt.Errorf("%w: await login ack: %v", ErrSession, err)
	}
	if ack.Code != codeOK {
		return fmt.Errorf("%w: login rejected: code %s: %s", ErrSession, ack.Code, ack.Msg)
	}

	if err := s.advance(StateAuthenticating, StateAuthenticated); err != nil {
		return err
	}
	slog.Info("ws authenticated")
	return nil
}

// Subscribe sends the subscribe op for one channel/instrument pair. The
// subscribe ack arrives on the stream and is skipped by later predicates.
func (s *Session) Subscribe(ctx context.Context, channel, instID string) error {
	if err := s.advance(StateAuthenticated, StateSubscribed); err != nil {
		return err
	}

	sub := subscribeRequest{Op: "subscribe", Args: []subscribeArg{{Channel: channel, InstID: instID}}}
	if err := s.writeJSON(sub); err != nil {
		return fmt.Errorf("%w: send subscribe: %v", ErrSession, err)
	}

	slog.Info("ws subscribed", "channel", channel, "instId", instID)
	return nil
}

// AwaitEvent consumes buffered and subsequently arriving frames in arrival
// order and returns the first one matching the predicate. Frames that do not
// parse as JSON envelopes and frames the predicate declines are skipped, not
// errors. Returns ErrTimeout when the deadline fires; the session remains
// open and only the caller decides to close it.
func (s *Session) AwaitEvent(ctx context.Context, match func(*PushFrame) bool, timeout time.Duration) (*PushFrame, error) {
	s.mu.Lock()
	if s.state == StateDisconnected || s.state == StateClosed {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: await from state %s", ErrSession, state)
	}
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSession, ctx.Err())
		case <-timer.C:
			return nil, fmt.Errorf("%w: no matching event within %s", ErrTimeout, timeout)
		case msg, ok := <-s.frames:
			if !ok {
				return nil, fmt.Errorf("%w: stream closed while waiting", ErrConnection)
			}
			var frame PushFrame
			if err := json.Unmarshal(msg, &frame); err != nil {
				// Raw keepalive responses and other non-JSON traffic.
				continue
			}
			if match(&frame) {
				return &frame, nil
			}
		}
	}
}

// Close releases the connection. Any state transitions to Closed; repeated
// and concurrent calls are no-ops.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		s.state = StateClosed
		s.mu.Unlock()

		if conn != nil {
			conn.Close()
		}
		s.wg.Wait()
		slog.Info("ws closed")
	})
}

// advance moves the state machine one step forward, rejecting out-of-order
// transitions.
func (s *Session) advance(from, to SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: %s requires state %s, have %s", ErrSession, to, from, s.state)
	}
	s.state = to
	return nil
}

func (s *Session) readPump(conn *websocket.Conn) {
	defer s.wg.Done()
	defer close(s.frames)

	for {
		conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				slog.Warn("ws read error", "err", err)
			}
			return
		}

		select {
		case s.frames <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Session) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.write(websocket.TextMessage, []byte("ping")); err != nil {
				slog.Warn("ws ping error", "err", err)
				return
			}
		}
	}
}

func (s *Session) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return s.write(websocket.TextMessage, b)
}

func (s *Session) write(msgType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: not connected", ErrConnection)
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(msgType, data)
}
