// Package dashboard provides the real-time publish/subscribe surface:
// a WebSocket server broadcasting entity-change envelopes to subscribed
// clients so they can invalidate their cached views and re-fetch.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// AllChannel is the implicit channel every client is subscribed to until
// it explicitly unsubscribes.
const AllChannel = "all"

// Message is the envelope delivered to subscribers. Data, when present, is
// a hint only; delivery is at-most-once and clients re-fetch on receipt.
type Message struct {
	Type       string          `json:"type"`
	EntityType string          `json:"entityType,omitempty"`
	EntityID   string          `json:"entityId,omitempty"`
	Action     string          `json:"action,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
}

// clientCommand is what clients send: subscribe/unsubscribe/ping.
type clientCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	subs map[string]bool
}

func (c *client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[AllChannel] || c.subs[channel]
}

type outbound struct {
	msg     Message
	channel string
}

// Config holds server configuration.
type Config struct {
	// Port to listen on; 0 picks a free port.
	Port int
	// Logger for server activity (default: stderr logger).
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{Port: 8080, Logger: log.Default()}
}

// Server manages WebSocket connections and broadcasts change envelopes.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	clients   map[*websocket.Conn]*client
	clientsMu sync.RWMutex

	broadcast chan outbound

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewServer creates a dashboard WebSocket server.
func NewServer(cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      fmt.Sprintf(":%d", cfg.Port),
		clients:   make(map[*websocket.Conn]*client),
		broadcast: make(chan outbound, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    cfg.Logger,
	}
}

// Start begins serving /ws and /health.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server and closes every client.
func (s *Server) Stop() error {
	s.logger.Println("Stopping dashboard server")
	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()
	return nil
}

// Broadcast queues a message for delivery to subscribers of channel (plus
// everyone on the implicit "all" channel). Best-effort: messages are
// dropped, with a warning, when the queue is full.
func (s *Server) Broadcast(msg Message, channel string) {
	select {
	case s.broadcast <- outbound{msg: msg, channel: channel}:
	case <-s.ctx.Done():
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case out := <-s.broadcast:
			if out.msg.Timestamp == "" {
				out.msg.Timestamp = time.Now().Format(time.RFC3339)
			}
			data, err := json.Marshal(out.msg)
			if err != nil {
				s.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			targets := make([]*client, 0, len(s.clients))
			for _, c := range s.clients {
				if c.subscribed(out.channel) {
					targets = append(targets, c)
				}
			}
			s.clientsMu.RUnlock()

			// Write outside the read lock so a slow client cannot stall
			// client registration.
			for _, c := range targets {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := c.conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					s.logger.Printf("Failed to send to client: %v", err)
					s.removeClient(c.conn)
				}
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, subs: map[string]bool{AllChannel: true}}
	s.clientsMu.Lock()
	s.clients[conn] = c
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Printf("Client connected (total: %d)", count)

	welcome, _ := json.Marshal(Message{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, welcome)
	cancel()

	go s.readLoop(c)
}

// readLoop processes subscribe/unsubscribe/ping commands and detects
// disconnects.
func (s *Server) readLoop(c *client) {
	defer s.removeClient(c.conn)

	for {
		_, data, err := c.conn.Read(s.ctx)
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.logger.Printf("Ignoring malformed client message: %v", err)
			continue
		}
		switch cmd.Action {
		case "subscribe":
			if cmd.Channel != "" {
				c.mu.Lock()
				c.subs[cmd.Channel] = true
				c.mu.Unlock()
			}
		case "unsubscribe":
			if cmd.Channel != "" {
				c.mu.Lock()
				delete(c.subs, cmd.Channel)
				c.mu.Unlock()
			}
		case "ping":
			pong, _ := json.Marshal(Message{
				Type:      "pong",
				Timestamp: time.Now().Format(time.RFC3339),
			})
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.conn.Write(ctx, websocket.MessageText, pong)
			cancel()
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		count := len(s.clients)
		s.clientsMu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("Client disconnected (total: %d)", count)
		return
	}
	s.clientsMu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	count := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": count,
	})
}

// GetAddr returns the server's listening address.
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
