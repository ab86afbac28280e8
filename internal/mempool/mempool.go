// Package mempool provides a simple sized pool for []byte buffers to reduce
// allocations on the image re-encoding hot path.
package mempool

import (
	"bytes"
	"sync"
)

var bytePools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple-of-4KiB bucket to reduce churn.
func sizeClass(n int) int {
	const step = 4096
	if n <= step {
		return step
	}
	r := (n + step - 1) / step
	return r * step
}

// GetBytes retrieves a []byte buffer with length 0 and capacity of at least n
// from the pool. The caller must return it via PutBytes when done.
func GetBytes(n int) []byte {
	cls := sizeClass(n)
	pAny, _ := bytePools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]byte, 0, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]byte, 0, cls)
	}
	buf, ok := p.Get().([]byte)
	if !ok || cap(buf) < cls {
		buf = make([]byte, 0, cls)
	}
	return buf[:0]
}

// PutBytes returns a buffer to the pool. It is safe to pass a nil slice.
func PutBytes(buf []byte) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := bytePools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]byte, 0, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return // skip
	}
	p.Put(buf[:0]) //nolint:staticcheck
}

// GetBuffer wraps a pooled byte slice in a bytes.Buffer ready for encoding.
// Release with PutBuffer.
func GetBuffer(n int) *bytes.Buffer {
	return bytes.NewBuffer(GetBytes(n))
}

// PutBuffer returns the buffer's storage to the pool.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	PutBytes(buf.Bytes())
}
