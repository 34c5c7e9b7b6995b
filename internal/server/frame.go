package server

import "bytes"

var (
	okLine   = []byte("HTTP/1.1 200 OK\r\n\r\n")
	failLine = []byte("HTTP/1.1 500 Internal Server Error\r\n\r\n")
)

// Frame wraps generated content in a minimal success response: status line,
// blank separator, body verbatim.
func Frame(body []byte) []byte {
	out := make([]byte, 0, len(okLine)+len(body))
	out = append(out, okLine...)
	return append(out, body...)
}

// FrameError is the failure response: a bare failure status line.
func FrameError() []byte {
	return bytes.Clone(failLine)
}
