package endpoint

import (
	"io"

	"pnc/util"
)

// Source is the non-blocking local input contract consumed by the
// pump.  Unlike io.Reader, a Source never blocks: when nothing is
// buffered it reports 0, nil and the pump moves on to the next tick.
type Source interface {
	// ReadAvailable copies any currently buffered bytes into p.
	// It returns 0, nil when no data is ready, io.EOF once the
	// stream is exhausted, and errors.ErrStop when the producer has
	// terminated and the pump should unwind immediately.
	ReadAvailable(p []byte) (int, error)
}

// StreamSource adapts a blocking io.Reader into a Source by pumping
// it on an internal goroutine.  It is consumed by exactly one pump at
// a time, so ReadAvailable needs no locking.
type StreamSource struct {
	chunks  chan []byte
	pending []byte
	done    bool
	final   error // reported once drained; set before chunks is closed
}

// NewStreamSource starts reading r in the background.  The source
// reports io.EOF once r is exhausted and all buffered data has been
// consumed; any other read error terminates the stream and is
// reported in EOF's place.
func NewStreamSource(r io.Reader) *StreamSource {
	s := &StreamSource{
		chunks: make(chan []byte, 8),
		final:  io.EOF,
	}
	go s.pump(r)
	return s
}

func (s *StreamSource) pump(r io.Reader) {
	buf := make([]byte, util.PumpBufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.chunks <- chunk
		}
		if err != nil {
			if err != io.EOF {
				s.final = err
			}
			// The close below publishes s.final to the consumer.
			close(s.chunks)
			return
		}
	}
}

// ReadAvailable implements Source.
func (s *StreamSource) ReadAvailable(p []byte) (int, error) {
	if len(s.pending) == 0 && !s.done {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				s.done = true
			} else {
				s.pending = chunk
			}
		default:
			return 0, nil // nothing ready this tick
		}
	}

	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}
	if s.done {
		return 0, s.final
	}
	return 0, nil
}

// BufferSource is an in-memory Source that yields a fixed payload and
// then EOF.  Used by tests and by zero-length local inputs.
type BufferSource struct {
	data []byte
}

// NewBufferSource returns a Source over the given bytes.
func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{data: data}
}

// ReadAvailable implements Source.
func (b *BufferSource) ReadAvailable(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}
