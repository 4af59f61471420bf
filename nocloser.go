package bmsg

import (
	"io"
)

// uncloseable forwards writes to the transport and absorbs Close. Only the
// response closes the stream it wraps.
type uncloseable struct {
	w io.Writer
}

func (u uncloseable) Write(p []byte) (int, error)       { return u.w.Write(p) }
func (u uncloseable) WriteString(s string) (int, error) { return io.WriteString(u.w, s) }
func (uncloseable) Close() error                        { return nil }

var _ io.WriteCloser = uncloseable{}
