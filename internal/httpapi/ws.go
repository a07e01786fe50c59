package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsSendBuffer       = 16
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// watcher is one websocket client following a game. Sends never block;
// a slow client misses updates and can ask for a fresh snapshot.
type watcher struct {
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *watcher) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *watcher) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// watch streams a game to a websocket client: a "game" snapshot on connect
// and on request, then one message per change named after the operation.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.mgr.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	log := h.log.With().Str("game", id).Str("rid", GetRequestID(r.Context())).Logger()
	log.Debug().Msg("watcher connected")

	sub := h.mgr.Subscribe(id, wsSendBuffer)
	c := &watcher{send: make(chan []byte, wsSendBuffer)}
	c.sendJSON(wsMessage{Type: "game", Payload: mustMarshal(ToGameResponse(g, h.mgr.Now()))})

	go func() {
		for ev := range sub.C {
			c.sendJSON(wsMessage{Type: string(ev.Kind), Payload: mustMarshal(ToGameResponse(ev.Game, h.mgr.Now()))})
		}
	}()
	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, c.send); err != nil {
			log.Debug().Err(err).Msg("watcher write")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			h.mgr.Unsubscribe(sub)
			c.close()
			log.Debug().Uint64("dropped", sub.Dropped()).Msg("watcher disconnected")
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			if g, err := h.mgr.Get(r.Context(), id); err == nil {
				c.sendJSON(wsMessage{Type: "game", Payload: mustMarshal(ToGameResponse(g, h.mgr.Now()))})
			}
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
