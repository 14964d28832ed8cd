// Package signal implements the call session over a websocket signaling
// gateway. Only the control plane lives here; media never touches this
// process.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/core"
	"github.com/voxline/voxline/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Dialer connects call sessions to the signaling gateway. Implements
// core.SessionFactory.
type Dialer struct {
	URL string
}

func NewDialer(url string) *Dialer {
	return &Dialer{URL: url}
}

// NewSession dials the gateway. The caller's context covers the handshake
// only; the session owns its lifetime afterwards and outlives the request
// that placed it, until Hangup or a terminal state.
func (d *Dialer) NewSession(ctx context.Context, roomID domain.RoomID, kind domain.CallType) (core.CallSession, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, err
	}
	sess := newWsCallSession(ws, roomID, kind)
	go sess.writePump()
	return sess, nil
}

type frame struct {
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	RoomID string `json:"room_id,omitempty"`
	Kind   string `json:"kind,omitempty"`
	State  string `json:"state,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// WsCallSession is one live call over the gateway. State and
// asserted-identity notifications are delivered from the read pump, one at a
// time in wire order, so callbacks never interleave. The read pump does not
// start until Place, so every callback registered before placement sees the
// full notification stream, including a gateway drop in the registration
// window.
type WsCallSession struct {
	id     domain.CallID
	roomID domain.RoomID
	kind   domain.CallType

	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	state     domain.CallState
	asserted  domain.UserID
	stateFns  []func(domain.CallState)
	assertFns []func()
	placed    bool
	closed    bool
}

func newWsCallSession(conn *websocket.Conn, roomID domain.RoomID, kind domain.CallType) *WsCallSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &WsCallSession{
		id:     domain.NewCallID(),
		roomID: roomID,
		kind:   kind,
		conn:   conn,
		send:   make(chan []byte, 32),
		ctx:    ctx,
		cancel: cancel,
		state:  domain.CallStateIdle,
	}
}

func (s *WsCallSession) ID() domain.CallID { return s.id }

func (s *WsCallSession) State() domain.CallState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *WsCallSession) AssertedIdentity() domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asserted
}

func (s *WsCallSession) OnStateChange(fn func(domain.CallState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateFns = append(s.stateFns, fn)
}

func (s *WsCallSession) OnAssertedIdentity(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertFns = append(s.assertFns, fn)
}

// Place sends the place frame and starts notification delivery. Callbacks
// must be wired before Place is called.
func (s *WsCallSession) Place(ctx context.Context) error {
	if err := s.sendFrame(frame{
		Type:   "place",
		CallID: string(s.id),
		RoomID: string(s.roomID),
		Kind:   string(s.kind),
	}); err != nil {
		return err
	}
	s.mu.Lock()
	start := !s.placed
	s.placed = true
	s.mu.Unlock()
	if start {
		go s.readPump()
	}
	return nil
}

func (s *WsCallSession) Hold() error {
	return s.sendFrame(frame{Type: "hold", CallID: string(s.id)})
}

func (s *WsCallSession) Resume() error {
	return s.sendFrame(frame{Type: "resume", CallID: string(s.id)})
}

// Hangup ends the session. A session hung up before placement has no leg at
// the gateway; the connection is simply dropped.
func (s *WsCallSession) Hangup() error {
	s.mu.RLock()
	placed := s.placed
	s.mu.RUnlock()
	if !placed {
		s.close()
		return nil
	}
	return s.sendFrame(frame{Type: "hangup", CallID: string(s.id)})
}

func (s *WsCallSession) sendFrame(f frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return s.trySend(b)
}

func (s *WsCallSession) trySend(b []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("session closed")
	}
	select {
	case s.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *WsCallSession) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.Close()
	s.mu.Unlock()
	s.cancel()
}

func (s *WsCallSession) writePump() {
	for {
		select {
		case <-s.ctx.Done():
			log.Info().Str("module", "adapters.signal").Str("call", string(s.id)).Msg("writePump session done")
			s.close()
			return
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Str("call", string(s.id)).Msg("writePump write error")
				return
			}
		}
	}
}

func (s *WsCallSession) readPump() {
	defer func() {
		log.Info().Str("module", "adapters.signal").Str("call", string(s.id)).Msg("readPump closing")
		s.deliverState(domain.CallStateEnded)
		s.close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleFrame(data)
		if s.State().Terminal() {
			return
		}
	}
}

func (s *WsCallSession) handleFrame(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad frame")
		return
	}
	switch f.Type {
	case "state":
		s.deliverState(domain.CallState(f.State))
	case "asserted_identity":
		s.deliverAssertedIdentity(domain.UserID(f.UserID))
	case "pong":
	default:
		log.Warn().Str("module", "adapters.signal").Str("type", f.Type).Msg("unknown frame")
	}
}

func (s *WsCallSession) deliverState(st domain.CallState) {
	s.mu.Lock()
	if s.state == st || s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.state = st
	fns := s.stateFns
	s.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (s *WsCallSession) deliverAssertedIdentity(user domain.UserID) {
	s.mu.Lock()
	s.asserted = user
	fns := s.assertFns
	s.mu.Unlock()
	log.Info().Str("module", "adapters.signal").Str("call", string(s.id)).Str("user", string(user)).Msg("asserted identity changed")
	for _, fn := range fns {
		fn()
	}
}
