package bmsg

import (
	"bytes"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrBufferFull is returned when an encoded body exceeds the buffer limit.
var ErrBufferFull = errors.New("response buffer is full")

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// limitedBuffer holds an encoded body until it can be framed. A negative
// limit disables the bound.
type limitedBuffer struct {
	buf   *bytes.Buffer
	limit int
}

func newLimitedBuffer(limit int) *limitedBuffer {
	buf, _ := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &limitedBuffer{buf: buf, limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit >= 0 && b.buf.Len()+len(p) > b.limit {
		return 0, errors.Wrapf(ErrBufferFull, "limit of %d bytes", b.limit)
	}

	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte { return b.buf.Bytes() }
func (b *limitedBuffer) Len() int      { return b.buf.Len() }

// free returns the buffer to the pool. The buffer must not be used afterwards.
func (b *limitedBuffer) free() {
	if b.buf == nil {
		return
	}

	bufPool.Put(b.buf)
	b.buf = nil
}
