package endpoint

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats tracks per-session byte counters.  A nil *Stats is a valid
// no-op receiver, so callers never need to nil-check.
type Stats struct {
	bytesSent atomic.Int64 // local → socket
	bytesRcvd atomic.Int64 // socket → local
	started   time.Time
}

// NewStats creates a counter set with the start time set to now.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// AddSent records n bytes written to the network.
func (s *Stats) AddSent(n int64) {
	if s == nil {
		return
	}
	s.bytesSent.Add(n)
}

// AddReceived records n bytes read from the network.
func (s *Stats) AddReceived(n int64) {
	if s == nil {
		return
	}
	s.bytesRcvd.Add(n)
}

// Sent returns the total bytes written to the network.
func (s *Stats) Sent() int64 {
	if s == nil {
		return 0
	}
	return s.bytesSent.Load()
}

// Received returns the total bytes read from the network.
func (s *Stats) Received() int64 {
	if s == nil {
		return 0
	}
	return s.bytesRcvd.Load()
}

// String renders the counters the way nc reports them on close.
func (s *Stats) String() string {
	if s == nil {
		return "sent 0, rcvd 0"
	}
	return fmt.Sprintf("sent %d, rcvd %d in %s",
		s.bytesSent.Load(), s.bytesRcvd.Load(),
		time.Since(s.started).Round(time.Millisecond))
}
