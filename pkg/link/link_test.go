package link

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itohio/ambre/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitLine(t *testing.T, l *Lines) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if line, ok := l.Poll(); ok {
			return line
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no line received")
	return ""
}

func TestLines_Poll(t *testing.T) {
	l := New(strings.NewReader("id?\r\n\n  th75  \nxyz\n"), io.Discard, nil, 0)
	defer l.Close()

	assert.Equal(t, "id?", waitLine(t, l))
	assert.Equal(t, "th75", waitLine(t, l))
	assert.Equal(t, "xyz", waitLine(t, l))

	<-l.Done()
	_, ok := l.Poll()
	assert.False(t, ok)
}

func TestLines_PollDoesNotBlock(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	l := New(r, io.Discard, r, 0)
	defer l.Close()

	start := time.Now()
	_, ok := l.Poll()
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLines_DropsWhenFull(t *testing.T) {
	input := strings.Repeat("th1\n", 10)
	l := New(strings.NewReader(input), io.Discard, nil, 2)
	defer l.Close()

	<-l.Done()
	count := 0
	for {
		if _, ok := l.Poll(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLines_WriteLine(t *testing.T) {
	out := &syncBuffer{}
	l := New(strings.NewReader(""), out, nil, 0)
	defer l.Close()

	l.WriteLine("75")
	l.WriteLine("Arduino, Ambre chamber")
	assert.Equal(t, "75\nArduino, Ambre chamber\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestLines_WriteLineErrorIsNotFatal(t *testing.T) {
	l := New(strings.NewReader(""), failingWriter{}, nil, 0)
	defer l.Close()
	assert.NotPanics(t, func() { l.WriteLine("x") })
}

func TestLines_CloseStopsReader(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	l := New(r, io.Discard, r, 0)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second close is a no-op")

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestLines_OverlongLineIsTruncated(t *testing.T) {
	r, w := io.Pipe()
	l := New(r, io.Discard, r, 0)
	defer l.Close()

	go func() {
		w.Write([]byte(strings.Repeat("x", 70*1024) + "\n"))
		w.Write([]byte("id?\n"))
	}()

	assert.Equal(t, strings.Repeat("x", protocol.MaxLineLength), waitLine(t, l))
	assert.Equal(t, "id?", waitLine(t, l))

	select {
	case <-l.Done():
		t.Fatal("reader stopped after an overlong line")
	default:
	}
	w.Close()
}

func TestLines_LastLineWithoutNewline(t *testing.T) {
	l := New(strings.NewReader("th?\nid?"), io.Discard, nil, 0)
	defer l.Close()

	assert.Equal(t, "th?", waitLine(t, l))
	assert.Equal(t, "id?", waitLine(t, l))
}

func TestLines_CloseWithoutCloserReturns(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	l := New(r, io.Discard, nil, 0)

	start := time.Now()
	require.NoError(t, l.Close())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	select {
	case <-l.Done():
		t.Fatal("reader cannot be interrupted without a closer")
	default:
	}
}
