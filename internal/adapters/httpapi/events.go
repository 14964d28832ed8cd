package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/core"
)

var errBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsClient) trySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return errBackpressure
	}
	return nil
}

func (c *wsClient) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// EventFeed pushes handler events and navigation intents to connected UI
// clients. It is the process-wide core.Dispatcher: a dispatched action is a
// broadcast to every client.
type EventFeed struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewEventFeed() *EventFeed {
	return &EventFeed{clients: make(map[*wsClient]struct{})}
}

func (f *EventFeed) Dispatch(a core.Action) {
	f.broadcast(a)
}

// PublishState forwards call-state-changed events to the UI.
func (f *EventFeed) PublishState(ev core.CallStateChange) {
	f.broadcast(struct {
		Type string `json:"type"`
		core.CallStateChange
	}{"call_state", ev})
}

// PublishRoomChange forwards call-changed-room events to the UI.
func (f *EventFeed) PublishRoomChange(ev core.CallRoomChange) {
	f.broadcast(struct {
		Type string `json:"type"`
		core.CallRoomChange
	}{"call_room_change", ev})
}

func (f *EventFeed) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.httpapi").Msg("broadcast marshal")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		if err := c.trySend(b); err != nil {
			c.close()
			delete(f.clients, c)
		}
	}
}

// HandleWS upgrades the connection and keeps it on the feed until it drops.
func (f *EventFeed) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.httpapi").Msg("ws upgrade")
		return
	}
	client := &wsClient{conn: ws, send: make(chan []byte, 32)}

	f.mu.Lock()
	f.clients[client] = struct{}{}
	count := len(f.clients)
	f.mu.Unlock()
	log.Info().Str("module", "adapters.httpapi").Int("clients", count).Msg("event feed client joined")

	go func() {
		for data := range client.send {
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				break
			}
		}
		client.close()
	}()

	// Drain reads to notice the close; the feed is one-way.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	f.mu.Lock()
	delete(f.clients, client)
	f.mu.Unlock()
	client.close()
}
