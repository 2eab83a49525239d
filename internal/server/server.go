// ABOUTME: Main server implementation for the capture stream
// ABOUTME: Manages WebSocket connections, client state and graceful shutdown
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Sendspin/sendspin-capture/internal/discovery"
	"github.com/Sendspin/sendspin-capture/internal/metrics"
	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/internal/ui"
	"github.com/Sendspin/sendspin-capture/internal/version"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	"github.com/Sendspin/sendspin-capture/pkg/sink"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Config holds server configuration
type Config struct {
	Port         int
	Path         string
	Name         string
	EnableMDNS   bool
	Debug        bool
	UseTUI       bool
	Codec        string // "auto" negotiates opus when possible, "pcm" forces pcm
	OpusBitrate  int
	ClientBuffer int

	// Format is the normalized encoder configuration being streamed
	Format frontend.Config

	// Source metadata for stream/metadata and the TUI
	Title, Artist, Album string
}

// StatsSource reports encoder progress
type StatsSource interface {
	Stats() frontend.Stats
}

// Server streams capture frames to websocket listeners
type Server struct {
	config   Config
	serverID string
	queue    *sink.Queue
	stats    StatsSource
	metrics  *metrics.Metrics

	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux
	addr       string

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Server clock (monotonic microseconds)
	clockStart time.Time
	frameSeq   uint64

	mdnsManager *discovery.Manager
	tui         *ui.ServerTUI

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	streamDone chan struct{}
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// New creates a server reading frames from queue. stats may be nil.
func New(config Config, queue *sink.Queue, stats StatsSource) *Server {
	if config.Path == "" {
		config.Path = protocol.DefaultPath
	}
	if config.ClientBuffer <= 0 {
		config.ClientBuffer = 100
	}
	if config.Codec == "" {
		config.Codec = "auto"
	}
	config.Format, _ = config.Format.Normalize()

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		queue:    queue,
		stats:    stats,
		metrics:  metrics.New(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local network deployment: accept any origin but log browsers
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:    make(map[string]*Client),
		clockStart: time.Now(),
		stopChan:   make(chan struct{}),
		streamDone: make(chan struct{}),
	}

	s.mux.HandleFunc(config.Path, s.handleWebSocket)
	s.mux.Handle("/metrics", s.metrics.Handler())
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

// Handler returns the HTTP handler serving the websocket, metrics and health endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Metrics returns the server metrics
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() string {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.addr
}

// Start listens on the configured port and serves until Stop is called,
// the TUI quits, or the HTTP server fails
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(listener)
}

// Serve runs the server on an existing listener. It blocks until shutdown.
func (s *Server) Serve(listener net.Listener) error {
	if s.config.UseTUI {
		s.tui = ui.NewServerTUI()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.status()); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	s.shutdownMu.Lock()
	s.addr = listener.Addr().String()
	s.shutdownMu.Unlock()

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        listener.Addr().(*net.TCPAddr).Port,
			Path:        s.config.Path,
			SampleRate:  s.config.Format.TargetRate,
			FrameSize:   s.config.Format.FrameSize,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.broadcast()
	}()
	go func() {
		defer s.wg.Done()
		s.statusLoop()
	}()

	log.Printf("WebSocket server listening on %s%s", s.addr, s.config.Path)

	s.httpServer = &http.Server{
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case <-tuiQuitChan:
		log.Printf("TUI quit requested, shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	// Unblocks the broadcast and status loops
	s.Stop()

	if s.tui != nil {
		s.tui.Stop()
	}

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.closeClients()
	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// StreamDone is closed once the frame queue has been drained and closed
func (s *Server) StreamDone() <-chan struct{} {
	return s.streamDone
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)

	s.handleConnection(conn)
}

// handleHealth reports liveness and listener count
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	count := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"server_id": s.serverID,
		"version":   version.Version,
		"clients":   count,
	})
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	if s.config.Debug {
		log.Printf("[DEBUG] New connection, waiting for handshake")
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	hello, err := parseHello(data)
	if err != nil {
		log.Printf("Invalid client hello: %v", err)
		writeError(conn, protocol.ErrInvalidHello, err.Error())
		return
	}

	log.Printf("Client hello: %s (ID: %s, codecs: %v)", hello.Name, hello.ClientID, hello.SupportedCodecs)

	client, err := newClient(hello, conn, s.config)
	if err != nil {
		log.Printf("Failed to set up client %s: %v", hello.Name, err)
		writeError(conn, protocol.ErrInvalidHello, err.Error())
		return
	}

	// Check for duplicate client ID and register atomically
	s.clientsMu.Lock()
	if existing, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", hello.ClientID, existing.Name)
		client.close()
		writeError(conn, protocol.ErrDuplicateID, "Client ID already connected")
		return
	}

	// Handshake replies are queued before the client is visible to the broadcast loop
	s.queueHandshake(client)
	s.clients[client.ID] = client
	count := len(s.clients)
	s.clientsMu.Unlock()

	s.metrics.SetConnectedClients(count)

	defer s.removeClient(client)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleClientMessage(client, data)
	}
}

// queueHandshake queues server/hello, stream/start and stream/metadata
func (s *Server) queueHandshake(client *Client) {
	client.send(protocol.Message{
		Type: protocol.TypeServerHello,
		Payload: protocol.ServerHello{
			ServerID: s.serverID,
			Name:     s.config.Name,
			Version:  version.Version,
			Protocol: protocol.ProtocolVersion,
		},
	})

	client.send(protocol.Message{
		Type: protocol.TypeStreamStart,
		Payload: protocol.StreamStart{
			Codec:      client.Codec,
			SampleRate: s.config.Format.TargetRate,
			Channels:   1,
			BitDepth:   16,
			FrameSize:  s.config.Format.FrameSize,
		},
	})

	if s.config.Title != "" {
		client.send(protocol.Message{
			Type: protocol.TypeStreamMeta,
			Payload: protocol.StreamMetadata{
				Title:  s.config.Title,
				Artist: s.config.Artist,
				Album:  s.config.Album,
			},
		})
	}

	log.Printf("Streaming to %s: %s %dHz, %d-sample frames", client.Name, client.Codec,
		s.config.Format.TargetRate, s.config.Format.FrameSize)
}

// removeClient unregisters a client and closes its send channel
func (s *Server) removeClient(client *Client) {
	s.clientsMu.Lock()
	if s.clients[client.ID] == client {
		delete(s.clients, client.ID)
	}
	count := len(s.clients)
	s.clientsMu.Unlock()

	client.close()
	s.metrics.SetConnectedClients(count)
	log.Printf("Client disconnected: %s (sent %d, dropped %d)", client.Name, client.sent.Load(), client.dropped.Load())
}

// closeClients closes every client connection during shutdown
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		client.Conn.Close()
	}
}

// clientWriter sends queued messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			switch v := msg.(type) {
			case []byte:
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					log.Printf("Error writing binary message: %v", err)
					client.Conn.Close()
					return
				}
			default:
				data, err := json.Marshal(v)
				if err != nil {
					log.Printf("Error marshaling message: %v", err)
					continue
				}
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Printf("Error writing text message: %v", err)
					client.Conn.Close()
					return
				}
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeClientTime:
		s.handleTimeSync(client, msg.Payload)
	case protocol.TypeClientState:
		s.handleClientState(client, msg.Payload)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// handleTimeSync responds to clock offset requests
func (s *Server) handleTimeSync(client *Client, payload interface{}) {
	serverRecv := s.getClockMicros()

	var clientTime protocol.ClientTime
	if err := remarshal(payload, &clientTime); err != nil {
		log.Printf("Error parsing client time: %v", err)
		return
	}

	serverSend := s.getClockMicros()

	if s.config.Debug {
		log.Printf("[DEBUG] Time sync for %s: t1=%d, t2=%d, t3=%d",
			client.Name, clientTime.ClientTransmitted, serverRecv, serverSend)
	}

	if !client.send(protocol.Message{
		Type: protocol.TypeServerTime,
		Payload: protocol.ServerTime{
			ClientTransmitted: clientTime.ClientTransmitted,
			ServerReceived:    serverRecv,
			ServerTransmitted: serverSend,
		},
	}) {
		log.Printf("Warning: could not send server time to %s (channel full)", client.Name)
	}
}

// handleClientState records listener health reports
func (s *Server) handleClientState(client *Client, payload interface{}) {
	var state protocol.ClientState
	if err := remarshal(payload, &state); err != nil {
		log.Printf("Error parsing client state: %v", err)
		return
	}

	client.mu.Lock()
	client.State = state
	client.mu.Unlock()

	if s.config.Debug {
		log.Printf("[DEBUG] Client %s state: %s (received %d, lost %d)",
			client.Name, state.State, state.FramesReceived, state.FramesLost)
	}
}

// getClockMicros returns the server clock in microseconds
func (s *Server) getClockMicros() int64 {
	return time.Since(s.clockStart).Microseconds()
}

// parseHello decodes and validates a client/hello message
func parseHello(data []byte) (protocol.ClientHello, error) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return protocol.ClientHello{}, fmt.Errorf("malformed message: %w", err)
	}

	if msg.Type != protocol.TypeClientHello {
		return protocol.ClientHello{}, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}

	var hello protocol.ClientHello
	if err := remarshal(msg.Payload, &hello); err != nil {
		return protocol.ClientHello{}, fmt.Errorf("malformed hello payload: %w", err)
	}

	if hello.ClientID == "" {
		return protocol.ClientHello{}, fmt.Errorf("client hello missing client_id")
	}
	if hello.Name == "" {
		return protocol.ClientHello{}, fmt.Errorf("client hello missing name")
	}
	return hello, nil
}

// remarshal converts a generically decoded payload into a typed struct
func remarshal(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeError sends server/error directly on a connection that is not yet registered
func writeError(conn *websocket.Conn, code, message string) {
	data, err := json.Marshal(protocol.Message{
		Type: protocol.TypeServerError,
		Payload: protocol.ServerError{
			Error:   code,
			Message: message,
		},
	})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	conn.WriteMessage(websocket.TextMessage, data)
}
