package clients

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/codenames/pkg/game"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/cbodonnell/codenames/pkg/messages"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
)

// Connection is the transport side of a connected client. Implementations
// must be safe for concurrent writes.
type Connection interface {
	WriteMessage(ctx context.Context, msg *messages.Message) error
}

// Client represents a live connection bound to a game and a player.
// Multiple clients may reference the same player, e.g. when a stale
// connection lingers after a reconnect; each is tracked independently
// until its own disconnect.
type Client struct {
	ID       uint32
	GameID   string
	PlayerID string
	Conn     Connection
}

// ClientManager tracks live connections grouped by game room and delivers
// targeted and broadcast messages.
type ClientManager struct {
	clients     map[uint32]*Client
	rooms       map[string]map[uint32]*Client
	clientsLock sync.RWMutex
	nextID      uint32
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uint32]*Client),
		rooms:   make(map[string]map[uint32]*Client),
		nextID:  1,
	}
}

// AddClient registers a connection under a game room and records its
// player association.
func (cm *ClientManager) AddClient(conn Connection, gameID, playerID string) (*Client, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique ID: %v", err)
	}

	client := &Client{
		ID:       clientID,
		GameID:   gameID,
		PlayerID: playerID,
		Conn:     conn,
	}
	cm.clients[clientID] = client
	if cm.rooms[gameID] == nil {
		cm.rooms[gameID] = make(map[uint32]*Client)
	}
	cm.rooms[gameID][clientID] = client
	return client, nil
}

// RemoveClient removes a client from the manager and returns its game and
// player association for the caller to act on. Removing an unknown client
// is a no-op.
func (cm *ClientManager) RemoveClient(clientID uint32) (gameID, playerID string, ok bool) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, exists := cm.clients[clientID]
	if !exists {
		return "", "", false
	}
	delete(cm.clients, clientID)
	if room, exists := cm.rooms[client.GameID]; exists {
		delete(room, clientID)
		if len(room) == 0 {
			delete(cm.rooms, client.GameID)
		}
	}
	return client.GameID, client.PlayerID, true
}

// RoomClients returns a snapshot of the clients connected to a room.
// Concurrent connects and disconnects never corrupt iteration over the
// returned slice; a client joining mid-broadcast catches the next one.
func (cm *ClientManager) RoomClients(gameID string) []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	room := cm.rooms[gameID]
	snapshot := make([]*Client, 0, len(room))
	for _, client := range room {
		snapshot = append(snapshot, client)
	}
	return snapshot
}

// ConnectionCount returns the number of live connections in a room.
func (cm *ClientManager) ConnectionCount(gameID string) int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.rooms[gameID])
}

// SendTo delivers a message to a single client. Delivery is best effort:
// a failure is logged and swallowed, the connection is cleaned up by its
// own disconnect path.
func (cm *ClientManager) SendTo(ctx context.Context, client *Client, msg *messages.Message) {
	if err := client.Conn.WriteMessage(ctx, msg); err != nil {
		log.Debug("Failed to send %s to client %d: %v", msg.Type, client.ID, err)
	}
}

// Broadcast delivers a message to every live connection in a room except
// excludeID (0 excludes nobody). A failed send never aborts the loop.
func (cm *ClientManager) Broadcast(ctx context.Context, gameID string, msg *messages.Message, excludeID uint32) {
	for _, client := range cm.RoomClients(gameID) {
		if client.ID == excludeID {
			continue
		}
		cm.SendTo(ctx, client, msg)
	}
}

// BroadcastGameState sends every connection in a room its own projection
// of the game state. Each recipient gets a freshly computed view for its
// player's privilege; views are never shared between recipients.
func (cm *ClientManager) BroadcastGameState(ctx context.Context, gameID string, svc *game.Service) {
	for _, client := range cm.RoomClients(gameID) {
		view, ok := svc.View(gameID, client.PlayerID)
		if !ok {
			return
		}
		msg, err := messages.New(messages.MessageTypeServerGameState, view)
		if err != nil {
			log.Error("Failed to marshal game state for client %d: %v", client.ID, err)
			continue
		}
		cm.SendTo(ctx, client, msg)
	}
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := cm.nextID
		cm.nextID++
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
