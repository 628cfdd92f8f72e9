// Package link carries command lines between the chamber loop and a byte
// stream: a serial port or the console.
package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/protocol"
)

const (
	// DefaultBaudRate matches the desktop application.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default number of queued command lines.
	DefaultBufferSize = 16
)

var _ chamber.Transport = (*Lines)(nil)

// Lines reads newline-delimited commands in a goroutine and hands them to a
// single consumer without blocking it.
type Lines struct {
	r      io.Reader
	w      io.Writer
	closer io.Closer

	lines  chan string
	wmu    sync.Mutex
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	done   chan struct{}
}

// New starts reading lines from r. Replies are written to w. closer, if not
// nil, is closed by Close.
func New(r io.Reader, w io.Writer, closer io.Closer, bufSize int) *Lines {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	l := &Lines{
		r:      r,
		w:      w,
		closer: closer,
		lines:  make(chan string, bufSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go l.readLines()

	return l
}

// Console reads commands from stdin and answers on stdout. Close does not
// interrupt a pending read of stdin; the reader goroutine ends with the
// process or at EOF.
func Console() *Lines {
	return New(os.Stdin, os.Stdout, nil, DefaultBufferSize)
}

// Poll returns one pending line, if any.
func (l *Lines) Poll() (string, bool) {
	select {
	case line, ok := <-l.lines:
		return line, ok
	default:
		return "", false
	}
}

// WriteLine writes line followed by a newline. Errors are logged; a reply
// that cannot be delivered is dropped.
func (l *Lines) WriteLine(line string) {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	if _, err := io.WriteString(l.w, line+"\n"); err != nil {
		log.Printf("Failed to write reply: %v", err)
	}
}

// Done is closed when the reader goroutine exits.
func (l *Lines) Done() <-chan struct{} {
	return l.done
}

// Close stops reading and closes the underlying stream, if any. It does not
// wait for the reader goroutine; use Done for that.
func (l *Lines) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.cancel()

	if l.closer != nil {
		if err := l.closer.Close(); err != nil {
			return fmt.Errorf("failed to close link: %w", err)
		}
	}
	return nil
}

// readLines reads lines and queues them. A full queue drops the line. Lines
// longer than protocol.MaxLineLength are truncated, never fatal.
func (l *Lines) readLines() {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	reader := bufio.NewReader(l.r)
	buf := make([]byte, 0, protocol.MaxLineLength)
	for {
		chunk, err := reader.ReadSlice('\n')
		if n := protocol.MaxLineLength - len(buf); n > 0 {
			buf = append(buf, chunk[:min(n, len(chunk))]...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}

		if !l.queue(string(buf)) {
			return
		}
		buf = buf[:0]

		if err != nil {
			if err != io.EOF && l.ctx.Err() == nil {
				log.Printf("Error reading commands: %v", err)
			}
			return
		}
	}
}

// queue hands a non-empty line to the consumer. It returns false once the
// link is closed.
func (l *Lines) queue(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	select {
	case <-l.ctx.Done():
		return false
	case l.lines <- line:
	default:
		log.Printf("Command queue full, dropping %q", line)
	}
	return true
}
