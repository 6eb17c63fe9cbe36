package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/gamemode"
	"github.com/Strophox/tetro-tui-sub001/pkg/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// tickInterval is how often a client's engine is advanced without input.
const tickInterval = 50 * time.Millisecond

// Client is one connected player: a websocket plus the engine instance the
// server runs for them.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	server  *Server
	game    *game.Game
	started time.Time
	lastAt  time.Duration
	mu      sync.Mutex

	lastPong time.Time
}

// Server hosts one engine per connected client and streams state and
// feedback back over websockets.
type Server struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// Configuration.
	PingInterval time.Duration
	PongTimeout  time.Duration
	Mode         string

	httpServer *http.Server
	addr       string
	log        zerolog.Logger
	nextID     int
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a server that builds each client's game from the named mode
// preset.
func New(addr, mode string, log zerolog.Logger) *Server {
	return &Server{
		clients:      make(map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
		Mode:         mode,
		addr:         addr,
		log:          log,
		stop:         make(chan struct{}),
	}
}

// Start runs the HTTP server; it blocks until Shutdown.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	s.log.Info().Str("addr", s.addr).Str("mode", s.Mode).Msg("game server starting")

	go s.run()

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully closes all clients and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("game server shutting down")
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	for _, client := range s.clients {
		client.conn.Close()
		close(client.send)
	}
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run is the hub goroutine tracking registrations.
func (s *Server) run() {
	for {
		select {
		case <-s.stop:
			return
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.id] = client
			count := len(s.clients)
			s.mu.Unlock()
			s.log.Info().Str("client", client.id).Int("clients", count).Msg("client connected")
		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.id]; ok {
				delete(s.clients, client.id)
				close(client.send)
			}
			count := len(s.clients)
			s.mu.Unlock()
			s.log.Info().Str("client", client.id).Int("clients", count).Msg("client disconnected")
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	count := len(s.clients)
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","clients":%d}`, count)
}

// handleWebSocket upgrades the connection and starts a game for the
// client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	g, err := s.buildGame()
	if err != nil {
		s.log.Error().Err(err).Msg("building game failed")
		conn.Close()
		return
	}

	s.mu.Lock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.mu.Unlock()

	client := &Client{
		id:       id,
		conn:     conn,
		send:     make(chan []byte, 64),
		server:   s,
		game:     g,
		started:  time.Now(),
		lastPong: time.Now(),
	}
	s.register <- client

	go client.writePump()
	go client.readPump()
	go client.gameLoop()
}

// buildGame constructs a fresh engine from the configured mode preset.
func (s *Server) buildGame() (*game.Game, error) {
	builder := game.NewBuilder()
	preset, ok := gamemode.ByName(s.Mode)
	if !ok {
		return builder.Build()
	}
	return preset.Build(builder)
}

// gameTime is the client's logical clock as measured by the server.
func (c *Client) gameTime() time.Duration {
	return time.Since(c.started)
}

// gameLoop advances the engine on a fixed tick and pushes state snapshots.
func (c *Client) gameLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.game.Ended() {
			c.mu.Unlock()
			return
		}
		at := c.gameTime()
		if at < c.lastAt {
			at = c.lastAt
		}
		c.lastAt = at
		msgs, err := c.game.Update(nil, at)
		ended := c.game.Ended()
		view := c.game.State()
		c.mu.Unlock()

		if err != nil {
			c.server.log.Error().Err(err).Str("client", c.id).Msg("engine update failed")
			return
		}
		c.pushFeedback(msgs)
		c.pushState(view)
		if ended {
			c.pushGameOver(view)
			return
		}
	}
}

// handleInput applies a button transition from the client. The server's
// clock is authoritative; client timestamps only move the update earlier
// within the elapsed window.
func (c *Client) handleInput(buttons game.ButtonSet, at time.Duration) {
	c.mu.Lock()
	serverAt := c.gameTime()
	if at > serverAt {
		at = serverAt
	}
	if at < c.lastAt {
		at = c.lastAt
	}
	c.lastAt = at
	msgs, err := c.game.Update(&buttons, at)
	ended := c.game.Ended()
	view := c.game.State()
	c.mu.Unlock()

	if err != nil {
		c.sendMessage(protocol.NewErrorMessage(err.Error(), http.StatusBadRequest))
		return
	}
	c.pushFeedback(msgs)
	c.pushState(view)
	if ended {
		c.pushGameOver(view)
	}
}

func (c *Client) pushState(view game.StateView) {
	msg, err := protocol.NewStateMessage(view)
	if err != nil {
		c.server.log.Error().Err(err).Msg("encoding state failed")
		return
	}
	c.sendMessage(msg)
}

func (c *Client) pushFeedback(msgs []game.Message) {
	for _, m := range msgs {
		wire, err := protocol.NewFeedbackMessage(m)
		if err != nil {
			continue
		}
		c.sendMessage(wire)
	}
}

func (c *Client) pushGameOver(view game.StateView) {
	if view.Result == nil {
		return
	}
	msg, err := protocol.NewGameOverMessage(*view.Result, view)
	if err != nil {
		return
	}
	c.sendMessage(msg)
}

func (c *Client) sendMessage(msg *protocol.Message) {
	data, err := msg.Serialize()
	if err != nil {
		return
	}
	defer func() {
		// Sending on a closed channel after disconnect is harmless here.
		recover()
	}()
	select {
	case c.send <- data:
	default:
		c.server.log.Warn().Str("client", c.id).Msg("send buffer full, dropping message")
	}
}

// readPump consumes messages from the client connection.
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.server.PongTimeout))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Warn().Err(err).Str("client", c.id).Msg("read error")
			}
			return
		}

		msg, err := protocol.Deserialize(data)
		if err != nil {
			c.sendMessage(protocol.NewErrorMessage(err.Error(), http.StatusBadRequest))
			continue
		}

		switch msg.Type {
		case protocol.MessageTypeInput:
			buttons, at, err := protocol.ParseInput(msg.Data)
			if err != nil {
				c.sendMessage(protocol.NewErrorMessage(err.Error(), http.StatusBadRequest))
				continue
			}
			c.handleInput(buttons, at)

		case protocol.MessageTypePong:
			c.lastPong = time.Now()
			c.conn.SetReadDeadline(time.Now().Add(c.server.PongTimeout))

		default:
			c.sendMessage(protocol.NewErrorMessage("unsupported message type", http.StatusBadRequest))
		}
	}
}

// writePump streams outgoing messages and heartbeats to the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.server.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			ping, err := protocol.NewMessage(protocol.MessageTypePing, protocol.PingMessage{Timestamp: time.Now().UnixMilli()})
			if err != nil {
				continue
			}
			data, err := ping.Serialize()
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
