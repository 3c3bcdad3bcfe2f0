// Package viz streams debug shapes and per-tick summaries to browser
// visualizers over websockets. Delivery is best effort: a slow or absent
// listener never holds up a tick.
package viz

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
)

const (
	sendBuffer   = 64
	writeTimeout = time.Second
)

// Frame is one message on the wire. Exactly one of Shapes or Primitives is set.
type Frame struct {
	Type       string                `json:"type"`
	Tick       int                   `json:"tick,omitempty"`
	Play       string                `json:"play,omitempty"`
	RobotID    int                   `json:"robotId,omitempty"`
	Shapes     []stp.Shape           `json:"shapes,omitempty"`
	Primitives []primitive.Primitive `json:"primitives,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub fans frames out to every connected listener.
type Hub struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	closed  bool
	wg      sync.WaitGroup
	dropped int

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// DrawShapes implements stp.DebugSink.
func (h *Hub) DrawShapes(robotID int, shapes ...stp.Shape) {
	h.Broadcast(Frame{Type: "shapes", RobotID: robotID, Shapes: shapes})
}

// PublishTick sends the primitives produced on a tick.
func (h *Hub) PublishTick(tick int, play string, prims []primitive.Primitive) {
	h.Broadcast(Frame{Type: "tick", Tick: tick, Play: play, Primitives: prims})
}

// Broadcast queues f for every listener, dropping it for listeners whose
// buffer is full.
func (h *Hub) Broadcast(f Frame) {
	if h.Subscribers() == 0 {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		slog.Warn("failed to marshal viz frame", "type", f.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.dropped++
		}
	}
}

// Subscribers reports how many listeners are connected. A closed hub has none.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return len(h.subs)
}

// Dropped reports how many frames were discarded for slow listeners.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// ServeHTTP upgrades the request and holds it until the listener leaves or
// the hub closes. Anything the listener sends is ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("viz upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	h.subs[sub] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()
	slog.Info("viz listener connected", "remote", r.RemoteAddr)

	go h.writeLoop(sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(sub)
	slog.Info("viz listener disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer h.wg.Done()
	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(sub)
				return
			}
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, sub)
	close(sub.done)
	h.mu.Unlock()
	sub.conn.Close()
}

// Close disconnects every listener and waits for their writers to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.remove(sub)
	}
	h.wg.Wait()
}
