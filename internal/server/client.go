// ABOUTME: Per-listener state for the capture server
// ABOUTME: Codec negotiation, frame encoding and non-blocking sends
package server

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"github.com/Sendspin/sendspin-capture/pkg/audio/encode"
	"github.com/gorilla/websocket"
)

// Client represents a connected listener
type Client struct {
	ID    string
	Name  string
	Conn  *websocket.Conn
	Codec string

	// Last reported listener state
	State protocol.ClientState

	encoder  encode.Encoder
	sendChan chan interface{}
	closed   bool

	sent    atomic.Uint64
	dropped atomic.Uint64

	mu sync.RWMutex
}

// negotiateCodec picks opus when allowed, offered by the client and legal
// for the stream format, otherwise pcm
func negotiateCodec(policy string, supported []string, rate, frameSize int) string {
	if policy == protocol.CodecPCM {
		return protocol.CodecPCM
	}
	if !encode.OpusFrameSupported(rate, frameSize) {
		return protocol.CodecPCM
	}
	for _, c := range supported {
		if c == protocol.CodecOpus {
			return protocol.CodecOpus
		}
	}
	return protocol.CodecPCM
}

func newClient(hello protocol.ClientHello, conn *websocket.Conn, config Config) (*Client, error) {
	codec := negotiateCodec(config.Codec, hello.SupportedCodecs, config.Format.TargetRate, config.Format.FrameSize)

	format := audio.Format{
		Codec:      codec,
		SampleRate: config.Format.TargetRate,
		Channels:   1,
		BitDepth:   16,
	}

	var enc encode.Encoder
	var err error
	switch codec {
	case protocol.CodecOpus:
		enc, err = encode.NewOpus(format, config.Format.FrameSize)
		if err == nil && config.OpusBitrate > 0 {
			if opusEnc, ok := enc.(*encode.OpusEncoder); ok {
				if err := opusEnc.SetBitrate(config.OpusBitrate); err != nil {
					log.Printf("Warning: %v", err)
				}
			}
		}
	default:
		enc, err = encode.NewPCM(format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s encoder: %w", codec, err)
	}

	return &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		Codec:    codec,
		encoder:  enc,
		sendChan: make(chan interface{}, config.ClientBuffer),
	}, nil
}

// send queues a control message without blocking. It reports false when
// the client buffer is full or the client is closed.
func (c *Client) send(msg interface{}) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.sendChan <- msg:
		return true
	default:
		return false
	}
}

// sendFrame encodes a frame and queues the binary message. Returns the
// message size, or 0 when the frame was dropped.
func (c *Client) sendFrame(seq uint64, timestamp int64, frame []int16) (int, error) {
	payload, err := c.encoder.Encode(frame)
	if err != nil {
		return 0, fmt.Errorf("failed to encode frame: %w", err)
	}

	msg := protocol.EncodeAudioFrame(seq, timestamp, payload)
	if !c.send(msg) {
		c.dropped.Add(1)
		return 0, nil
	}
	c.sent.Add(1)
	return len(msg), nil
}

// close releases the encoder and closes the send channel
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.sendChan)
	if err := c.encoder.Close(); err != nil {
		log.Printf("Warning: encoder close for %s: %v", c.Name, err)
	}
}
