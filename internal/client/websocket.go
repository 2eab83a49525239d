// ABOUTME: WebSocket listener client for the capture stream
// ABOUTME: Handles connection, handshake, frame decoding and loss accounting
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/internal/version"
	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"github.com/Sendspin/sendspin-capture/pkg/audio/decode"
	"github.com/gorilla/websocket"
)

// ErrRejected is returned when the server answers the hello with server/error
var ErrRejected = errors.New("client: rejected by server")

// Config holds client configuration
type Config struct {
	ServerAddr      string
	Path            string
	ClientID        string
	Name            string
	SupportedCodecs []string
	Debug           bool
}

// Frame is a decoded audio frame
type Frame struct {
	Sequence  uint64
	Timestamp int64 // Microseconds, server clock
	Samples   []int16
}

// Client represents a WebSocket listener
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels
	Frames       chan Frame
	TimeSyncResp chan protocol.ServerTime
	Metadata     chan protocol.StreamMetadata

	server  protocol.ServerHello
	stream  protocol.StreamStart
	decoder decode.FrameDecoder

	received atomic.Uint64
	lost     atomic.Uint64
	nextSeq  uint64
	started  bool

	// State
	connected bool
	ended     chan struct{}
	endOnce   sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = protocol.DefaultPath
	}
	if len(config.SupportedCodecs) == 0 {
		config.SupportedCodecs = []string{protocol.CodecOpus, protocol.CodecPCM}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:       config,
		Frames:       make(chan Frame, 100),
		TimeSyncResp: make(chan protocol.ServerTime, 10),
		Metadata:     make(chan protocol.StreamMetadata, 10),
		ended:        make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake sends client/hello and waits for server/hello and stream/start
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID:        c.config.ClientID,
		Name:            c.config.Name,
		Version:         protocol.ProtocolVersion,
		SupportedCodecs: c.config.SupportedCodecs,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}

	if err := c.sendJSON(protocol.Message{Type: protocol.TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	defer c.conn.SetReadDeadline(time.Time{})

	msg, err := c.readControl()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	if err := decodePayload(msg, protocol.TypeServerHello, &c.server); err != nil {
		return err
	}

	msg, err = c.readControl()
	if err != nil {
		return fmt.Errorf("failed to read stream/start: %w", err)
	}
	if err := decodePayload(msg, protocol.TypeStreamStart, &c.stream); err != nil {
		return err
	}

	format := audio.Format{
		Codec:      c.stream.Codec,
		SampleRate: c.stream.SampleRate,
		Channels:   c.stream.Channels,
		BitDepth:   c.stream.BitDepth,
	}

	switch c.stream.Codec {
	case protocol.CodecOpus:
		c.decoder, err = decode.NewOpus(format)
	default:
		c.decoder, err = decode.NewPCM(format)
	}
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	log.Printf("Handshake complete with %s: %s %dHz, %d-sample frames",
		c.server.Name, c.stream.Codec, c.stream.SampleRate, c.stream.FrameSize)

	return nil
}

// readControl reads one text message
func (c *Client) readControl() (protocol.Message, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.Message{}, err
	}
	if messageType != websocket.TextMessage {
		return protocol.Message{}, fmt.Errorf("unexpected binary message during handshake")
	}

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return protocol.Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	return msg, nil
}

// decodePayload checks the message type and decodes its payload into v
func decodePayload(msg protocol.Message, want string, v interface{}) error {
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		return err
	}

	if msg.Type == protocol.TypeServerError {
		var serr protocol.ServerError
		json.Unmarshal(payloadBytes, &serr)
		return fmt.Errorf("%w: %s (%s)", ErrRejected, serr.Message, serr.Error)
	}
	if msg.Type != want {
		return fmt.Errorf("expected %s, got %s", want, msg.Type)
	}
	return json.Unmarshal(payloadBytes, v)
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()
	defer close(c.Frames)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.handleBinaryMessage(data)
		case websocket.TextMessage:
			c.handleJSONMessage(data)
		}
	}
}

// handleBinaryMessage decodes an audio frame and tracks sequence gaps
func (c *Client) handleBinaryMessage(data []byte) {
	af, err := protocol.DecodeAudioFrame(data)
	if err != nil {
		log.Printf("Invalid binary message: %v", err)
		return
	}

	if c.started && af.Sequence > c.nextSeq {
		gap := af.Sequence - c.nextSeq
		c.lost.Add(gap)
		log.Printf("Warning: %d frames lost before frame %d", gap, af.Sequence)
	}
	c.started = true
	c.nextSeq = af.Sequence + 1

	samples, err := c.decoder.Decode(af.Payload)
	if err != nil {
		log.Printf("Failed to decode frame %d: %v", af.Sequence, err)
		return
	}
	c.received.Add(1)

	if c.config.Debug && af.Sequence%500 == 0 {
		log.Printf("[DEBUG] Frame %d: timestamp=%d, %d samples", af.Sequence, af.Timestamp, len(samples))
	}

	select {
	case c.Frames <- Frame{Sequence: af.Sequence, Timestamp: af.Timestamp, Samples: samples}:
	case <-c.ctx.Done():
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	payloadBytes, _ := json.Marshal(msg.Payload)

	switch msg.Type {
	case protocol.TypeServerTime:
		var timeMsg protocol.ServerTime
		json.Unmarshal(payloadBytes, &timeMsg)
		select {
		case c.TimeSyncResp <- timeMsg:
		default:
		}

	case protocol.TypeStreamMeta:
		var meta protocol.StreamMetadata
		json.Unmarshal(payloadBytes, &meta)
		log.Printf("Now capturing: %s", meta.Title)
		select {
		case c.Metadata <- meta:
		default:
		}

	case protocol.TypeStreamEnd:
		var end protocol.StreamEnd
		json.Unmarshal(payloadBytes, &end)
		log.Printf("Stream ended: %s", end.Reason)
		c.endOnce.Do(func() { close(c.ended) })

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// SendState sends a client/state message with the current frame counters
func (c *Client) SendState(state string) error {
	return c.sendJSON(protocol.Message{
		Type: protocol.TypeClientState,
		Payload: protocol.ClientState{
			State:          state,
			FramesReceived: c.received.Load(),
			FramesLost:     c.lost.Load(),
		},
	})
}

// SendTimeSync sends a client/time message
func (c *Client) SendTimeSync(t1 int64) error {
	return c.sendJSON(protocol.Message{
		Type: protocol.TypeClientTime,
		Payload: protocol.ClientTime{
			ClientTransmitted: t1,
		},
	})
}

// Stream returns the negotiated stream format
func (c *Client) Stream() protocol.StreamStart {
	return c.stream
}

// Server returns the server hello
func (c *Client) Server() protocol.ServerHello {
	return c.server
}

// Received returns the number of frames decoded
func (c *Client) Received() uint64 {
	return c.received.Load()
}

// Lost returns the number of frames missing from the sequence
func (c *Client) Lost() uint64 {
	return c.lost.Load()
}

// Ended is closed when the server sends stream/end
func (c *Client) Ended() <-chan struct{} {
	return c.ended
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		if c.decoder != nil {
			c.decoder.Close()
		}
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
