package game

import (
	"github.com/cbodonnell/codenames/pkg/game/types"
)

// ComputeView builds a fresh recipient-specific projection of a game.
// Unrevealed card types are stripped unless the viewer is privileged;
// revealed cards always carry their true type. Every call returns a new
// view so projections are never shared across privilege levels.
// Callers are responsible for holding the room lock.
func ComputeView(game *types.Game, privileged bool) *types.GameView {
	players := make(map[string]*types.Player, len(game.Players))
	for id, p := range game.Players {
		player := *p
		players[id] = &player
	}

	clueHistory := make([]*types.Clue, len(game.ClueHistory))
	copy(clueHistory, game.ClueHistory)

	cards := make([]types.CardView, len(game.Cards))
	for i, card := range game.Cards {
		view := types.CardView{
			Word:     card.Word,
			Revealed: card.Revealed,
			Position: card.Position,
		}
		if privileged || card.Revealed {
			view.Type = card.Type
		}
		cards[i] = view
	}

	return &types.GameView{
		ID:               game.ID,
		State:            game.State,
		Players:          players,
		CurrentTeam:      game.CurrentTeam,
		StartingTeam:     game.StartingTeam,
		CurrentClue:      game.CurrentClue,
		GuessesRemaining: game.GuessesRemaining,
		Winner:           game.Winner,
		RedRemaining:     game.CountRemaining(types.TeamRed),
		BlueRemaining:    game.CountRemaining(types.TeamBlue),
		ClueHistory:      clueHistory,
		Cards:            cards,
	}
}
