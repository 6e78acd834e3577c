package controller

import (
	"sync"

	"github.com/gorilla/websocket"
)

// connWriter serializes writes per connection. Handlers running on behalf
// of different users broadcast to the same conn concurrently, and gorilla
// supports at most one concurrent writer per conn.
type connWriter struct {
	mu    sync.Mutex
	locks map[*websocket.Conn]*sync.Mutex
}

func newConnWriter() *connWriter {
	return &connWriter{locks: make(map[*websocket.Conn]*sync.Mutex)}
}

func (w *connWriter) WriteJSON(conn *websocket.Conn, v any) error {
	w.mu.Lock()
	lock, ok := w.locks[conn]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[conn] = lock
	}
	w.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	return conn.WriteJSON(v)
}

func (w *connWriter) forget(conn *websocket.Conn) {
	w.mu.Lock()
	delete(w.locks, conn)
	w.mu.Unlock()
}
