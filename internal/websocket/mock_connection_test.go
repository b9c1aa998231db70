package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	messageType int
	data        []byte
}

// mockConnection feeds ReadMessage from inbound and records every write
type mockConnection struct {
	inbound  chan []byte
	written  chan frame
	closed   chan struct{}
	once     sync.Once
	writeErr error

	mu          sync.Mutex
	pongHandler func(string) error
	readLimit   int64
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		inbound: make(chan []byte, 16),
		written: make(chan frame, 64),
		closed:  make(chan struct{}),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	select {
	case <-m.closed:
		return errors.New("use of closed connection")
	default:
	}
	m.written <- frame{messageType: messageType, data: append([]byte(nil), data...)}
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.inbound:
		return websocket.TextMessage, msg, nil
	case <-m.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseGoingAway}
	}
}

func (m *mockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	m.readLimit = limit
	m.mu.Unlock()
}

func (m *mockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	m.pongHandler = h
	m.mu.Unlock()
}

func (m *mockConnection) RemoteAddr() string { return "127.0.0.1:50000" }

// next waits for the next written frame
func (m *mockConnection) next(timeout time.Duration) (frame, bool) {
	select {
	case f := <-m.written:
		return f, true
	case <-time.After(timeout):
		return frame{}, false
	}
}
