// ABOUTME: Binary audio frame message encoding
// ABOUTME: Layout is [type:1][sequence:8 BE][timestamp us:8 BE][payload]
package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// AudioFrameMessageType marks a binary audio frame
	AudioFrameMessageType = 1

	// FrameHeaderSize is the fixed header length of a binary frame
	FrameHeaderSize = 1 + 8 + 8
)

// AudioFrame is a decoded binary frame message
type AudioFrame struct {
	Sequence  uint64
	Timestamp int64 // server clock, microseconds
	Payload   []byte
}

// EncodeAudioFrame creates a binary audio frame message
func EncodeAudioFrame(seq uint64, timestamp int64, payload []byte) []byte {
	msg := make([]byte, FrameHeaderSize+len(payload))
	msg[0] = AudioFrameMessageType
	binary.BigEndian.PutUint64(msg[1:9], seq)
	binary.BigEndian.PutUint64(msg[9:17], uint64(timestamp))
	copy(msg[FrameHeaderSize:], payload)
	return msg
}

// DecodeAudioFrame parses a binary audio frame message. Payload aliases data.
func DecodeAudioFrame(data []byte) (AudioFrame, error) {
	if len(data) < FrameHeaderSize {
		return AudioFrame{}, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	if data[0] != AudioFrameMessageType {
		return AudioFrame{}, fmt.Errorf("unexpected binary message type: %d", data[0])
	}
	return AudioFrame{
		Sequence:  binary.BigEndian.Uint64(data[1:9]),
		Timestamp: int64(binary.BigEndian.Uint64(data[9:17])),
		Payload:   data[FrameHeaderSize:],
	}, nil
}
