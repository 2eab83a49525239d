// ABOUTME: Frame broadcast and status loops for the capture server
// ABOUTME: Drains the frame queue to every listener and publishes stats
package server

import (
	"log"
	"sort"
	"time"

	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/internal/ui"
)

// broadcast sends every queued frame to all clients until the queue closes
// or the server stops
func (s *Server) broadcast() {
	for {
		select {
		case frame, ok := <-s.queue.Frames():
			if !ok {
				s.endStream("source ended")
				return
			}
			s.broadcastFrame(frame)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) broadcastFrame(frame []int16) {
	seq := s.frameSeq
	s.frameSeq++
	timestamp := s.getClockMicros()

	if s.config.Debug && seq%500 == 0 {
		log.Printf("[DEBUG] Broadcasting frame %d at %dus", seq, timestamp)
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		n, err := client.sendFrame(seq, timestamp, frame)
		if err != nil {
			log.Printf("Error sending frame to %s: %v", client.Name, err)
			continue
		}
		if n == 0 {
			s.metrics.RecordClientDrop()
			if dropped := client.dropped.Load(); dropped == 1 || dropped%100 == 0 {
				log.Printf("Warning: %s is not keeping up, %d frames dropped", client.Name, dropped)
			}
			continue
		}
		s.metrics.RecordFrameSent(n)
	}
}

// endStream tells every client the stream is over
func (s *Server) endStream(reason string) {
	log.Printf("Frame queue closed, ending stream")

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.send(protocol.Message{
			Type:    protocol.TypeStreamEnd,
			Payload: protocol.StreamEnd{Reason: reason},
		})
	}
	s.clientsMu.RUnlock()

	close(s.streamDone)
}

// statusLoop publishes metrics and TUI updates once per second
func (s *Server) statusLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.publishStatus()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) publishStatus() {
	if s.stats != nil {
		s.metrics.ObserveEncoder(s.stats.Stats())
	}
	s.metrics.ObserveQueue(s.queue.Len(), s.queue.Dropped())

	if s.tui != nil {
		s.tui.Update(s.status())
	}
}

// status builds the TUI snapshot
func (s *Server) status() ui.Status {
	st := ui.Status{
		Name:        s.config.Name,
		Port:        s.config.Port,
		Path:        s.config.Path,
		SourceTitle: s.sourceTitle(),
		NativeRate:  s.config.Format.NativeRate,
		TargetRate:  s.config.Format.TargetRate,
		FrameSize:   s.config.Format.FrameSize,
		QueueDepth:  s.queue.Len(),
		QueueCap:    s.queue.Cap(),
		QueueDrops:  s.queue.Dropped(),
	}
	if s.stats != nil {
		st.Encoder = s.stats.Stats()
	}

	s.clientsMu.RLock()
	for _, client := range s.clients {
		st.Clients = append(st.Clients, ui.ClientInfo{
			Name:    client.Name,
			ID:      client.ID,
			Codec:   client.Codec,
			Sent:    client.sent.Load(),
			Dropped: client.dropped.Load(),
		})
	}
	s.clientsMu.RUnlock()

	sort.Slice(st.Clients, func(i, j int) bool {
		return st.Clients[i].Name < st.Clients[j].Name
	})
	return st
}

func (s *Server) sourceTitle() string {
	if s.config.Title == "" {
		return "Test Tone (440Hz)"
	}
	if s.config.Artist != "" {
		return s.config.Artist + " - " + s.config.Title
	}
	return s.config.Title
}
