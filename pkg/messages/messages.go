package messages

import (
	"encoding/json"

	gametypes "github.com/cbodonnell/codenames/pkg/game/types"
)

// Client message types
const (
	MessageTypeClientJoinGame   = "join_game"
	MessageTypeClientAssignRole = "assign_role"
	MessageTypeClientStartGame  = "start_game"
	MessageTypeClientGiveClue   = "give_clue"
	MessageTypeClientRevealCard = "reveal_card"
	MessageTypeClientEndTurn    = "end_turn"
	MessageTypeClientResetGame  = "reset_game"
)

// Server message types
const (
	MessageTypeServerConnected    = "connected"
	MessageTypeServerGameState    = "game_state"
	MessageTypeServerPlayerJoined = "player_joined"
	MessageTypeServerPlayerLeft   = "player_left"
	MessageTypeServerGameStarted  = "game_started"
	MessageTypeServerClueGiven    = "clue_given"
	MessageTypeServerCardRevealed = "card_revealed"
	MessageTypeServerTurnEnded    = "turn_ended"
	MessageTypeServerGameOver     = "game_over"
	MessageTypeServerGameReset    = "game_reset"
	MessageTypeServerError        = "error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds a message with a marshaled payload. Marshal errors are
// returned to the caller rather than sent half-formed.
func New(msgType string, payload interface{}) (*Message, error) {
	if payload == nil {
		return &Message{Type: msgType}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: b}, nil
}

type ClientJoinGame struct {
	PlayerName string `json:"player_name"`
}

type ClientAssignRole struct {
	Team string `json:"team"`
	Role string `json:"role"`
}

type ClientGiveClue struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
}

type ClientRevealCard struct {
	Position int `json:"position"`
}

type ServerConnected struct {
	PlayerID string `json:"playerId"`
}

type ServerPlayerJoined struct {
	Player *gametypes.Player `json:"player"`
}

type ServerPlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type ServerClueGiven struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
}

type ServerCardRevealed struct {
	Position int             `json:"position"`
	Card     *gametypes.Card `json:"card"`
}

type ServerGameOver struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type ServerError struct {
	Message string `json:"message"`
}
