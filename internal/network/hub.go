package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	maxMessage   = 1 << 16
	sendBuffered = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts simulator frames to websocket clients and latches the key
// presses they send. It is a sim.Renderer and its Source is an input.Source.
type Hub struct {
	params *physics.Params
	logger *slog.Logger
	latch  *input.Latch

	mu      sync.Mutex
	clients map[*client]struct{}
	nextID  int
	closed  bool
}

func NewHub(p *physics.Params, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		params:  p,
		logger:  logger,
		latch:   input.NewLatch(),
		clients: make(map[*client]struct{}),
	}
}

// Source returns the latch fed by client input messages.
func (h *Hub) Source() input.Source { return h.latch }

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Draw queues the frame for every client. Slow clients drop frames rather
// than stall the simulation.
func (h *Hub) Draw(f sim.Frame) error {
	msg, err := Encode(MsgFrame, f)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("dropped frame", "client", c.id, "tick", f.Tick)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(conn *websocket.Conn) (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	h.nextID++
	c := &client{
		id:   fmt.Sprintf("c%d", h.nextID),
		conn: conn,
		send: make(chan []byte, sendBuffered),
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// reply queues a message for one client unless it has already gone.
func (h *Hub) reply(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("reply dropped", "client", c.id)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}
	c, ok := h.register(conn)
	if !ok {
		conn.Close()
		return
	}
	h.logger.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.Info("client disconnected", "client", c.id)
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read failed", "client", c.id, "err", err)
			}
			return
		}
		if err := h.handle(c, msg); err != nil {
			h.logger.Debug("bad message", "client", c.id, "err", err)
		}
	}
}

func (h *Hub) handle(c *client, msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}

	switch env.T {
	case MsgHello:
		hello, err := DecodePayload[Hello](env)
		if err != nil {
			return err
		}
		h.logger.Info("hello", "client", c.id, "name", hello.Name, "version", hello.V)
		welcome, err := Encode(MsgWelcome, Welcome{
			ClientID: c.id,
			TickMs:   h.params.Tick.Milliseconds(),
			Width:    h.params.Width,
			Height:   h.params.Height,
		})
		if err != nil {
			return err
		}
		h.reply(c, welcome)
	case MsgInput:
		in, err := DecodePayload[Input](env)
		if err != nil {
			return err
		}
		h.latch.Press(in.Target(), in.Signals)
	default:
		return fmt.Errorf("unknown message type %q", env.T)
	}
	return nil
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
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

// ListenAndServe serves the hub on /ws until ctx ends, then shuts the server
// down and disconnects clients.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: writeWait}

	errc := make(chan error, 1)
	go func() {
		h.logger.Info("listening", "addr", addr, "endpoint", "/ws")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
