package rpc

import (
	"log/slog"

	"github.com/z71200/runtime/internal/paintpass"
)

// Sink implements frame.EventSink by pushing each queued event to
// every connection Server has open right now, framed the same way as
// ask/return/error messages, in the encounter order the Paint Pass
// recorded them.
type Sink struct {
	Server *Server
	Log    *slog.Logger
}

func (s *Sink) Flush(events []paintpass.QueuedEvent) {
	for _, e := range events {
		if err := s.Server.Broadcast(e.EventID); err != nil {
			s.Log.Warn("rpc: event delivery failed", "element", e.Element, "event_id", e.EventID, "error", err)
		}
	}
}
