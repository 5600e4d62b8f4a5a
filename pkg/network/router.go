package network

import (
	"context"
	"encoding/json"

	"github.com/cbodonnell/codenames/pkg/clients"
	"github.com/cbodonnell/codenames/pkg/game"
	gametypes "github.com/cbodonnell/codenames/pkg/game/types"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/cbodonnell/codenames/pkg/messages"
)

// Router decodes inbound protocol messages, dispatches them to the game
// service, and triggers the broadcasts for their results. Validation
// failures are surfaced to the acting connection only.
type Router struct {
	gameService   *game.Service
	clientManager *clients.ClientManager
}

type NewRouterOptions struct {
	GameService   *game.Service
	ClientManager *clients.ClientManager
}

func NewRouter(opts NewRouterOptions) *Router {
	return &Router{
		gameService:   opts.GameService,
		clientManager: opts.ClientManager,
	}
}

// HandleMessage dispatches a single inbound message from a client.
func (r *Router) HandleMessage(ctx context.Context, client *clients.Client, msg *messages.Message) {
	switch msg.Type {
	case messages.MessageTypeClientJoinGame:
		r.handleJoinGame(ctx, client, msg)
	case messages.MessageTypeClientAssignRole:
		r.handleAssignRole(ctx, client, msg)
	case messages.MessageTypeClientStartGame:
		r.handleStartGame(ctx, client)
	case messages.MessageTypeClientGiveClue:
		r.handleGiveClue(ctx, client, msg)
	case messages.MessageTypeClientRevealCard:
		r.handleRevealCard(ctx, client, msg)
	case messages.MessageTypeClientEndTurn:
		r.handleEndTurn(ctx, client)
	case messages.MessageTypeClientResetGame:
		r.handleResetGame(ctx, client)
	default:
		log.Warn("Unknown message type %q from client %d", msg.Type, client.ID)
		r.SendError(ctx, client, "unknown message type")
	}
}

func (r *Router) handleJoinGame(ctx context.Context, client *clients.Client, msg *messages.Message) {
	joinGame := &messages.ClientJoinGame{}
	if err := json.Unmarshal(msg.Payload, joinGame); err != nil {
		r.SendError(ctx, client, "invalid join_game payload")
		return
	}
	if joinGame.PlayerName == "" {
		joinGame.PlayerName = "Anonymous"
	}

	player, err := r.gameService.AddPlayer(client.GameID, client.PlayerID, joinGame.PlayerName)
	if err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
	r.broadcast(ctx, client.GameID, messages.MessageTypeServerPlayerJoined, messages.ServerPlayerJoined{
		Player: player,
	}, client.ID)
}

func (r *Router) handleAssignRole(ctx context.Context, client *clients.Client, msg *messages.Message) {
	assignRole := &messages.ClientAssignRole{}
	if err := json.Unmarshal(msg.Payload, assignRole); err != nil {
		r.SendError(ctx, client, "invalid assign_role payload")
		return
	}

	team := gametypes.Team(assignRole.Team)
	if team != gametypes.TeamRed && team != gametypes.TeamBlue {
		r.SendError(ctx, client, "invalid team")
		return
	}
	role := gametypes.Role(assignRole.Role)
	if role != gametypes.RoleSpymaster && role != gametypes.RoleOperative {
		r.SendError(ctx, client, "invalid role")
		return
	}

	if err := r.gameService.AssignRole(client.GameID, client.PlayerID, team, role); err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
}

func (r *Router) handleStartGame(ctx context.Context, client *clients.Client) {
	if err := r.gameService.StartGame(client.GameID); err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
	r.broadcast(ctx, client.GameID, messages.MessageTypeServerGameStarted, nil, 0)
}

func (r *Router) handleGiveClue(ctx context.Context, client *clients.Client, msg *messages.Message) {
	giveClue := &messages.ClientGiveClue{}
	if err := json.Unmarshal(msg.Payload, giveClue); err != nil {
		r.SendError(ctx, client, "invalid give_clue payload")
		return
	}

	clue, err := r.gameService.GiveClue(client.GameID, client.PlayerID, giveClue.Word, giveClue.Number)
	if err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
	r.broadcast(ctx, client.GameID, messages.MessageTypeServerClueGiven, messages.ServerClueGiven{
		Word:   clue.Word,
		Number: clue.Number,
	}, 0)
}

func (r *Router) handleRevealCard(ctx context.Context, client *clients.Client, msg *messages.Message) {
	revealCard := &messages.ClientRevealCard{Position: -1}
	if err := json.Unmarshal(msg.Payload, revealCard); err != nil {
		r.SendError(ctx, client, "invalid reveal_card payload")
		return
	}

	result, err := r.gameService.RevealCard(client.GameID, client.PlayerID, revealCard.Position)
	if err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
	r.broadcast(ctx, client.GameID, messages.MessageTypeServerCardRevealed, messages.ServerCardRevealed{
		Position: result.Card.Position,
		Card:     result.Card,
	}, 0)

	if result.GameOver {
		r.broadcast(ctx, client.GameID, messages.MessageTypeServerGameOver, messages.ServerGameOver{
			Winner: string(result.Winner),
			Reason: result.Reason,
		}, 0)
	} else if result.TurnEnded {
		r.broadcast(ctx, client.GameID, messages.MessageTypeServerTurnEnded, nil, 0)
	}
}

func (r *Router) handleEndTurn(ctx context.Context, client *clients.Client) {
	if err := r.gameService.EndTurn(client.GameID, client.PlayerID); err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
	r.broadcast(ctx, client.GameID, messages.MessageTypeServerTurnEnded, nil, 0)
}

func (r *Router) handleResetGame(ctx context.Context, client *clients.Client) {
	if err := r.gameService.ResetGame(client.GameID); err != nil {
		r.SendError(ctx, client, err.Error())
		return
	}

	r.broadcast(ctx, client.GameID, messages.MessageTypeServerGameReset, nil, 0)
	r.clientManager.BroadcastGameState(ctx, client.GameID, r.gameService)
}

// HandleDisconnect deregisters a connection, removes its player from the
// game, notifies the room, and deletes the game once its last connection
// is gone.
func (r *Router) HandleDisconnect(ctx context.Context, client *clients.Client) {
	gameID, playerID, ok := r.clientManager.RemoveClient(client.ID)
	if !ok {
		return
	}

	if r.gameService.RemovePlayer(gameID, playerID) {
		r.clientManager.BroadcastGameState(ctx, gameID, r.gameService)
		r.broadcast(ctx, gameID, messages.MessageTypeServerPlayerLeft, messages.ServerPlayerLeft{
			PlayerID: playerID,
		}, 0)
	}

	if r.clientManager.ConnectionCount(gameID) == 0 {
		if r.gameService.DeleteGame(gameID) {
			log.Debug("Deleted empty game %s", gameID)
		}
	}
}

// SendError sends an error message to a single client. Errors never
// close the connection or reach other clients in the room.
func (r *Router) SendError(ctx context.Context, client *clients.Client, message string) {
	msg, err := messages.New(messages.MessageTypeServerError, messages.ServerError{Message: message})
	if err != nil {
		log.Error("Failed to marshal error message: %v", err)
		return
	}
	r.clientManager.SendTo(ctx, client, msg)
}

func (r *Router) broadcast(ctx context.Context, gameID, msgType string, payload interface{}, excludeID uint32) {
	msg, err := messages.New(msgType, payload)
	if err != nil {
		log.Error("Failed to marshal %s message: %v", msgType, err)
		return
	}
	r.clientManager.Broadcast(ctx, gameID, msg, excludeID)
}
