// ABOUTME: WebSocket server streaming encoded capture frames
// ABOUTME: Handshake, per-client codec negotiation, broadcast and status endpoints
// Package server delivers PCM16 frames from a sink.Queue to websocket
// listeners.
//
// Each listener sends client/hello with the codecs it can decode. The server
// answers with server/hello and stream/start, then sends every frame as a
// binary message. A listener that falls behind loses frames rather than
// stalling the broadcast.
//
// Example:
//
//	q := sink.NewQueue(64)
//	srv := server.New(server.Config{Port: 8928, Format: enc.Config()}, q, enc)
//	err := srv.Start() // blocks until Stop
package server
