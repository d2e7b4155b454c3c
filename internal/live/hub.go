// Package live pushes committed game snapshots to websocket watchers.
//
// Each watcher subscribes to a single game. The hub keeps one buffered send
// queue per connection; a watcher that falls behind is disconnected rather
// than slowing down the guess path.
package live

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Watchers never send data; anything larger than a control frame is dropped.
	maxMessageSize = 512
	// Queued snapshots per watcher before it is considered too slow.
	sendBuffer = 16
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("live: hub closed")

// client is one websocket watcher of one game.
type client struct {
	hub    *Hub
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks watchers per game and fans out snapshots to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	games  map[string]map[*client]struct{}
	closed bool
}

// NewHub returns a hub accepting upgrades from origin ("" accepts any origin).
func NewHub(origin string) *Hub {
	h := &Hub{games: make(map[string]map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return origin == "" || o == "" || o == origin
		},
	}
	return h
}

// Subscribe upgrades the request and streams g, then every later snapshot of it.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, g game.Game) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(g.View())
	if err != nil {
		_ = conn.Close()
		return err
	}

	c := &client{hub: h, gameID: g.ID, conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- payload

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	watchers, ok := h.games[g.ID]
	if !ok {
		watchers = make(map[*client]struct{})
		h.games[g.ID] = watchers
	}
	watchers[c] = struct{}{}
	if g.State.Terminal() {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	log.Debug().Str("gameId", g.ID).Msg("watcher connected")
	go c.writePump()
	go c.readPump()
	return nil
}

// Publish queues g's view for every watcher of that game. It never blocks.
func (h *Hub) Publish(g game.Game) {
	h.mu.Lock()
	defer h.mu.Unlock()
	watchers := h.games[g.ID]
	if len(watchers) == 0 {
		return
	}
	payload, err := json.Marshal(g.View())
	if err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("encode snapshot")
		return
	}
	for c := range watchers {
		select {
		case c.send <- payload:
		default:
			log.Warn().Str("gameId", g.ID).Msg("dropping slow watcher")
			h.removeLocked(c)
		}
	}
	// Finished games never change again.
	if g.State.Terminal() {
		for c := range watchers {
			h.removeLocked(c)
		}
	}
}

// Forget disconnects every watcher of a deleted game.
func (h *Hub) Forget(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.games[gameID] {
		h.removeLocked(c)
	}
}

// Watchers reports how many connections follow gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.games[gameID])
}

// Close disconnects all watchers and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, watchers := range h.games {
		for c := range watchers {
			h.removeLocked(c)
		}
	}
}

// removeLocked unregisters c and closes its queue; the write pump then
// flushes what is left and closes the connection. Caller holds h.mu.
func (h *Hub) removeLocked(c *client) {
	watchers, ok := h.games[c.gameID]
	if !ok {
		return
	}
	if _, ok := watchers[c]; !ok {
		return
	}
	delete(watchers, c)
	close(c.send)
	if len(watchers) == 0 {
		delete(h.games, c.gameID)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// readPump discards inbound frames and notices when the peer goes away.
func (c *client) readPump() {
	defer c.hub.remove(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("gameId", c.gameID).Msg("watcher read")
			}
			return
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
