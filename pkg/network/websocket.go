package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/codenames/pkg/clients"
	"github.com/cbodonnell/codenames/pkg/game"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/cbodonnell/codenames/pkg/messages"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// StatusGameNotFound is the close code sent when connecting to an
	// unknown game room.
	StatusGameNotFound websocket.StatusCode = 4004

	// writeTimeout bounds a single send so a slow consumer cannot stall
	// a broadcast to the rest of the room.
	writeTimeout = 10 * time.Second
)

// WSConnection adapts a WebSocket connection to the clients.Connection
// interface with a per-send write deadline.
type WSConnection struct {
	conn *websocket.Conn
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) WriteMessage(ctx context.Context, msg *messages.Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

// WSHandler accepts WebSocket connections at /ws/{gameID} and drives a
// read loop per connection.
type WSHandler struct {
	gameService   *game.Service
	clientManager *clients.ClientManager
	router        *Router
}

type NewWSHandlerOptions struct {
	GameService   *game.Service
	ClientManager *clients.ClientManager
}

func NewWSHandler(opts NewWSHandlerOptions) *WSHandler {
	return &WSHandler{
		gameService:   opts.GameService,
		clientManager: opts.ClientManager,
		router: NewRouter(NewRouterOptions{
			GameService:   opts.GameService,
			ClientManager: opts.ClientManager,
		}),
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to accept WebSocket connection: %v", err)
		return
	}

	if !h.gameService.Exists(gameID) {
		conn.Close(StatusGameNotFound, "game not found")
		return
	}

	playerID := uuid.NewString()
	client, err := h.clientManager.AddClient(NewWSConnection(conn), gameID, playerID)
	if err != nil {
		log.Error("Failed to add client: %v", err)
		conn.Close(websocket.StatusInternalError, "failed to register connection")
		return
	}

	log.Debug("New WebSocket connection from %s for game %s", r.RemoteAddr, gameID)
	h.handleConnection(r.Context(), conn, client)
}

// handleConnection runs the read loop for a single connection. Returning
// tears the connection down and removes the player from the game.
func (h *WSHandler) handleConnection(ctx context.Context, conn *websocket.Conn, client *clients.Client) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		h.router.HandleDisconnect(context.Background(), client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	connected, err := messages.New(messages.MessageTypeServerConnected, messages.ServerConnected{
		PlayerID: client.PlayerID,
	})
	if err != nil {
		log.Error("Failed to marshal connected message: %v", err)
		return
	}
	h.clientManager.SendTo(ctx, client, connected)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == -1 && !errors.Is(err, context.Canceled) {
				log.Debug("Error reading WebSocket message for client %d: %v", client.ID, err)
			}
			log.Trace("Connection closed for client %d", client.ID)
			return
		}

		msg := &messages.Message{}
		if err := json.Unmarshal(data, msg); err != nil {
			h.router.SendError(ctx, client, "invalid message format")
			continue
		}

		h.router.HandleMessage(ctx, client, msg)
	}
}
