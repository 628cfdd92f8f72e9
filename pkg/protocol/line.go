package protocol

import "strings"

// MaxLineLength bounds one command line. Longer input is truncated.
const MaxLineLength = 64

// LineBuffer assembles bytes from a serial port into command lines without
// allocating per byte.
type LineBuffer struct {
	buf [MaxLineLength]byte
	pos int
}

// Feed adds one byte. It returns a complete, trimmed line when b terminates a
// non-empty one.
func (lb *LineBuffer) Feed(b byte) (string, bool) {
	if b == '\n' || b == '\r' {
		if lb.pos == 0 {
			return "", false
		}
		line := strings.TrimSpace(string(lb.buf[:lb.pos]))
		lb.pos = 0
		if line == "" {
			return "", false
		}
		return line, true
	}

	// Excess characters are ignored until the line ends.
	if lb.pos < len(lb.buf) {
		lb.buf[lb.pos] = b
		lb.pos++
	}
	return "", false
}

// Reset discards a partially received line.
func (lb *LineBuffer) Reset() {
	lb.pos = 0
}

// Pending returns the number of buffered bytes.
func (lb *LineBuffer) Pending() int {
	return lb.pos
}
