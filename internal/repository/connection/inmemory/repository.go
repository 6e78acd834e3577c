package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"

	"github.com/MuratFaizulla/mediapleer/internal/repository/connection"
)

// repo tracks which live connection belongs to which room and user. It is a
// process-local follower cache: the room store's users list stays the
// cross-instance source of truth for room membership.
type repo struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]connection.Client
	rooms   map[string]map[*websocket.Conn]struct{}
}

func NewRepo() *repo {
	return &repo{
		clients: make(map[*websocket.Conn]connection.Client),
		rooms:   make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (r *repo) Add(conn *websocket.Conn, client connection.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.clients[conn] = client
	if r.rooms[client.RoomId] == nil {
		r.rooms[client.RoomId] = make(map[*websocket.Conn]struct{})
	}
	r.rooms[client.RoomId][conn] = struct{}{}

	return nil
}

// RemoveByConn unregisters the connection and reports where it belonged.
func (r *repo) RemoveByConn(conn *websocket.Conn) (connection.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[conn]
	if !ok {
		return connection.Client{}, connection.ErrNotFound
	}

	delete(r.clients, conn)
	if conns, ok := r.rooms[client.RoomId]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.rooms, client.RoomId)
		}
	}

	return client, nil
}

func (r *repo) GetRoomConns(roomId string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.rooms[roomId])
}
