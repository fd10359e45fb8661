package server

import (
	"bufio"
	"io"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/valyala/bytebufferpool"
)

// captureWriter holds everything the downstream handler tried to send.
// Body bytes land in buf; the final status is held back until the
// middleware forwards the response.
type captureWriter struct {
	buf      *bytebufferpool.ByteBuffer
	status   int
	hijacked bool
}

// wrap returns a ResponseWriter that diverts w's body and status into c.
// Header() is left alone, so headers set by the handler are the real ones.
func (c *captureWriter) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				// 1xx responses are interim and may be sent any number of times.
				if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
					next(code)
					return
				}
				if c.status == 0 {
					c.status = code
				}
			}
		},
		Write: func(httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				c.implicitOK()
				return c.buf.Write(b)
			}
		},
		ReadFrom: func(httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				c.implicitOK()
				return c.buf.ReadFrom(src)
			}
		},
		// Nothing reaches the client before the handler returns.
		Flush: func(httpsnoop.FlushFunc) httpsnoop.FlushFunc {
			return func() {}
		},
		// A hijacked connection belongs to the handler; nothing may be
		// forwarded on it afterwards.
		Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
			return func() (net.Conn, *bufio.ReadWriter, error) {
				conn, rw, err := next()
				if err == nil {
					c.hijacked = true
				}
				return conn, rw, err
			}
		},
	})
}

func (c *captureWriter) implicitOK() {
	if c.status == 0 {
		c.status = http.StatusOK
	}
}

// statusCode is the status the client will see.
func (c *captureWriter) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
