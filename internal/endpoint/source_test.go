package endpoint

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// drain polls a source until it reports a terminal error, collecting
// everything it produced.
func drain(t *testing.T, s Source, timeout time.Duration) (string, error) {
	t.Helper()

	var out strings.Builder
	buf := make([]byte, 64)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		n, err := s.ReadAvailable(buf)
		out.Write(buf[:n])
		if err != nil {
			return out.String(), err
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatalf("source did not terminate within %v (got %q)", timeout, out.String())
	return "", nil
}

func TestStreamSource_DeliversDataThenEOF(t *testing.T) {
	s := NewStreamSource(strings.NewReader("hello stream"))

	got, err := drain(t, s, 2*time.Second)
	if err != io.EOF {
		t.Fatalf("terminal error = %v, want io.EOF", err)
	}
	if got != "hello stream" {
		t.Errorf("got %q", got)
	}
}

func TestStreamSource_NonBlockingWhenIdle(t *testing.T) {
	// A reader that never produces: ReadAvailable must return
	// immediately with 0, nil rather than block.
	pr, pw := io.Pipe()
	defer pw.Close()
	defer pr.Close()

	s := NewStreamSource(pr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 8)
		n, err := s.ReadAvailable(buf)
		if n != 0 || err != nil {
			t.Errorf("ReadAvailable = (%d, %v), want (0, nil)", n, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReadAvailable blocked on an idle reader")
	}
}

func TestStreamSource_PartialConsumption(t *testing.T) {
	s := NewStreamSource(strings.NewReader("abcdef"))

	// Tiny destination buffer: data must survive across calls.
	var got strings.Builder
	buf := make([]byte, 2)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := s.ReadAvailable(buf)
		got.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if got.String() != "abcdef" {
		t.Errorf("got %q", got.String())
	}
}

// failReader yields a payload and then a non-EOF error.
type failReader struct {
	data []byte
	err  error
}

func (r *failReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// TestStreamSource_ReadErrorSurfaces verifies a non-EOF read error is
// reported as the terminal error, not flattened to io.EOF.
func TestStreamSource_ReadErrorSurfaces(t *testing.T) {
	broken := errors.New("device unplugged")
	s := NewStreamSource(&failReader{data: []byte("partial"), err: broken})

	got, terr := drain(t, s, 2*time.Second)
	if terr != broken {
		t.Errorf("terminal error = %v, want %v", terr, broken)
	}
	if got != "partial" {
		t.Errorf("got %q, want %q", got, "partial")
	}
}

func TestBufferSource(t *testing.T) {
	s := NewBufferSource([]byte("xyz"))

	buf := make([]byte, 8)
	n, err := s.ReadAvailable(buf)
	if err != nil || string(buf[:n]) != "xyz" {
		t.Fatalf("first read = (%q, %v)", buf[:n], err)
	}

	if _, err := s.ReadAvailable(buf); err != io.EOF {
		t.Errorf("second read err = %v, want io.EOF", err)
	}
	// EOF is sticky.
	if _, err := s.ReadAvailable(buf); err != io.EOF {
		t.Errorf("third read err = %v, want io.EOF", err)
	}
}

func TestBufferSource_Empty(t *testing.T) {
	s := NewBufferSource(nil)
	if _, err := s.ReadAvailable(make([]byte, 4)); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}
