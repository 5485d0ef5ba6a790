// Package spectate streams finalized round entries to websocket
// observers. It is a pure consumer of the match log: it never touches
// sim state and dropping a slow client never stalls the match.
package spectate

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gridwar.gg/internal/matchlog"
)

type Hub struct {
	log zerolog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	history []json.RawMessage
	closed  bool
}

type client struct {
	out chan json.RawMessage
}

const clientBuffer = 256

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: map[*client]struct{}{},
	}
}

// WriteRound implements the match sink: each entry is fanned out to all
// connected observers and kept so late joiners can catch up.
func (h *Hub) WriteRound(entry matchlog.RoundEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, b)
	for c := range h.clients {
		select {
		case c.out <- b:
		default:
			// Slow consumer: drop it rather than block the round loop.
			close(c.out)
			delete(h.clients, c)
		}
	}
	return nil
}

// Close disconnects all observers after the final round is written.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.out)
		delete(h.clients, c)
	}
}

// Handler upgrades an observer connection and replays the log so far
// before streaming new rounds in order.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{out: make(chan json.RawMessage, clientBuffer)}

		h.mu.Lock()
		backlog := append([]json.RawMessage(nil), h.history...)
		done := h.closed
		if !done {
			h.clients[c] = struct{}{}
		}
		h.mu.Unlock()

		for _, b := range backlog {
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.drop(c)
				return
			}
		}
		if done {
			return
		}
		for b := range c.out {
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.out)
		delete(h.clients, c)
		h.log.Debug().Msg("spectator dropped")
	}
}
