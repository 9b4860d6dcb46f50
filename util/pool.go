package util

import "sync"

// PumpBufSize bounds a single read in the endpoint pump loop.  Small on
// purpose: each tick moves at most this much per direction so the loop
// stays responsive.
const PumpBufSize = 1024

// BufPool provides reusable byte buffers for the pump loops, reducing
// GC pressure when a keep-open server churns through sessions.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, PumpBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
