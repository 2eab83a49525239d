// ABOUTME: Capture stream wire protocol package
// ABOUTME: JSON control messages and the binary audio frame layout
// Package protocol defines the messages exchanged between the capture
// server and its listeners.
//
// Control messages are JSON text frames wrapped in Message. Audio travels
// as binary frames: one type byte, a big-endian sequence number, a
// big-endian server timestamp in microseconds, then the encoded payload.
//
// Example:
//
//	msg := protocol.EncodeAudioFrame(seq, nowMicros, pcmBytes)
//	frame, err := protocol.DecodeAudioFrame(msg)
package protocol
