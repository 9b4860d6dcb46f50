package endpoint

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"pnc/util"
)

// NewConsoleSource wraps the process's standard input (or any file) as
// a Source.  An interactive terminal is read with short deadline polls
// on the fd itself, so no read is left pending across session
// boundaries and ^D surfaces on the next tick; pipes and files go
// through the goroutine-fed stream reader.
func NewConsoleSource(f *os.File, logger *util.Logger) Source {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		src, err := newTerminalSource(f)
		if err == nil {
			logger.Debug("local input %s is a terminal", f.Name())
			return src
		}
		logger.Debug("terminal input %s is not pollable (%v); buffering reads", f.Name(), err)
		return NewStreamSource(f)
	}
	logger.Debug("local input %s is a pipe or file", f.Name())
	return NewStreamSource(f)
}

// terminalSource reads a terminal fd directly, bounded by the same
// short deadline the pump uses for its socket reads.
type terminalSource struct {
	f *os.File
}

// newTerminalSource switches the fd to non-blocking mode and registers
// it with the runtime poller so read deadlines work on it.
func newTerminalSource(f *os.File) (*terminalSource, error) {
	fd := f.Fd()
	if err := setNonblock(fd, true); err != nil {
		return nil, err
	}
	pf := os.NewFile(fd, f.Name())
	if pf == nil {
		return nil, errors.New("fd rejected by the poller")
	}
	if err := pf.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return nil, err
	}
	return &terminalSource{f: pf}, nil
}

// ReadAvailable implements Source.
func (t *terminalSource) ReadAvailable(p []byte) (int, error) {
	t.f.SetReadDeadline(time.Now().Add(pollInterval)) //nolint:errcheck
	n, err := t.f.Read(p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return n, nil // nothing ready this tick
	case errors.Is(err, io.EOF):
		return n, io.EOF
	default:
		return n, err
	}
}
