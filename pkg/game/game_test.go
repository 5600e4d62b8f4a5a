package game

import (
	"fmt"
	"testing"

	"github.com/cbodonnell/codenames/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWordSource struct {
	err error
}

func (f *fakeWordSource) Pick(n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("WORD%02d", i)
	}
	return words, nil
}

func newTestService() *Service {
	return NewService(NewServiceOptions{Words: &fakeWordSource{}})
}

// addTestPlayers joins four players and assigns a spymaster and an
// operative to each team.
func addTestPlayers(t *testing.T, svc *Service, gameID string) {
	t.Helper()
	for _, p := range []struct {
		id   string
		name string
		team types.Team
		role types.Role
	}{
		{"a", "Alice", types.TeamRed, types.RoleSpymaster},
		{"b", "Bob", types.TeamRed, types.RoleOperative},
		{"c", "Carol", types.TeamBlue, types.RoleSpymaster},
		{"d", "Dave", types.TeamBlue, types.RoleOperative},
	} {
		_, err := svc.AddPlayer(gameID, p.id, p.name)
		require.NoError(t, err)
		require.NoError(t, svc.AssignRole(gameID, p.id, p.team, p.role))
	}
}

// fixedBoard builds a deterministic board: red at positions 0-8, blue at
// 9-16, neutral at 17-23, assassin at 24.
func fixedBoard() []*types.Card {
	cards := make([]*types.Card, types.BoardSize)
	for i := 0; i < types.BoardSize; i++ {
		cardType := types.CardTypeRed
		switch {
		case i >= 9 && i <= 16:
			cardType = types.CardTypeBlue
		case i >= 17 && i <= 23:
			cardType = types.CardTypeNeutral
		case i == 24:
			cardType = types.CardTypeAssassin
		}
		cards[i] = &types.Card{
			Word:     fmt.Sprintf("WORD%02d", i),
			Type:     cardType,
			Position: i,
		}
	}
	return cards
}

// startFixedGame creates a four-player game with a deterministic board
// and red to move.
func startFixedGame(t *testing.T, svc *Service) string {
	t.Helper()
	g, err := svc.CreateGame()
	require.NoError(t, err)
	addTestPlayers(t, svc, g.ID)

	r, ok := svc.getRoom(g.ID)
	require.True(t, ok)
	r.game.Cards = fixedBoard()
	r.game.StartingTeam = types.TeamRed
	r.game.CurrentTeam = types.TeamRed
	r.game.State = types.GameStateInProgress
	return g.ID
}

func TestService_CreateGame(t *testing.T) {
	svc := newTestService()

	g, err := svc.CreateGame()
	require.NoError(t, err)

	assert.Len(t, g.ID, GameIDLength)
	for _, c := range g.ID {
		assert.True(t, c >= 'A' && c <= 'Z', "game ID must be uppercase ASCII letters, got %q", g.ID)
	}
	assert.Equal(t, types.GameStateLobby, g.State)
	assert.Empty(t, g.Players)
	assert.True(t, svc.Exists(g.ID))

	other, err := svc.CreateGame()
	require.NoError(t, err)
	assert.NotEqual(t, g.ID, other.ID)
}

func TestService_AddPlayer(t *testing.T) {
	svc := newTestService()
	g, err := svc.CreateGame()
	require.NoError(t, err)

	_, err = svc.AddPlayer("NOSUCH", "p1", "Alice")
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.False(t, svc.Exists("NOSUCH"), "missing rooms must never be created implicitly")

	player, err := svc.AddPlayer(g.ID, "p1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", player.Name)
	assert.Empty(t, player.Team)
	assert.Empty(t, player.Role)

	// Rejoining with the same ID returns the existing player unchanged.
	require.NoError(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleSpymaster))
	rejoined, err := svc.AddPlayer(g.ID, "p1", "Alice again")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rejoined.Name)
	assert.Equal(t, types.RoleSpymaster, rejoined.Role)
}

func TestService_RemovePlayer(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	assert.True(t, svc.RemovePlayer(gameID, "a"))
	assert.False(t, svc.RemovePlayer(gameID, "a"))
	assert.False(t, svc.RemovePlayer("NOSUCH", "a"))

	// Removing the spymaster that gave the active clue leaves turn state alone.
	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.TeamRed, g.CurrentTeam)
	assert.NotNil(t, g.CurrentClue)
	assert.Equal(t, 3, g.GuessesRemaining)
}

func TestService_AssignRole(t *testing.T) {
	svc := newTestService()
	g, err := svc.CreateGame()
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleSpymaster), ErrPlayerNotFound)

	_, err = svc.AddPlayer(g.ID, "p1", "Alice")
	require.NoError(t, err)
	_, err = svc.AddPlayer(g.ID, "p2", "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleSpymaster))

	// Second spymaster on the same team is rejected.
	assert.ErrorIs(t, svc.AssignRole(g.ID, "p2", types.TeamRed, types.RoleSpymaster), ErrSpymasterTaken)

	// Re-assignment of the same player is allowed pre-start.
	require.NoError(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleOperative))
	require.NoError(t, svc.AssignRole(g.ID, "p2", types.TeamRed, types.RoleSpymaster))

	// A failed assignment must not partially mutate the player.
	require.NoError(t, svc.AssignRole(g.ID, "p1", types.TeamBlue, types.RoleOperative))
	assert.ErrorIs(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleSpymaster), ErrSpymasterTaken)
	player, err := svc.AddPlayer(g.ID, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, types.TeamBlue, player.Team)
	assert.Equal(t, types.RoleOperative, player.Role)
}

func TestService_StartGame(t *testing.T) {
	svc := newTestService()
	g, err := svc.CreateGame()
	require.NoError(t, err)

	assert.ErrorIs(t, svc.StartGame("NOSUCH"), ErrGameNotFound)

	// No spymasters at all.
	assert.ErrorIs(t, svc.StartGame(g.ID), ErrMissingSpymasters)

	_, err = svc.AddPlayer(g.ID, "p1", "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(g.ID, "p1", types.TeamRed, types.RoleSpymaster))

	// Only one team has a spymaster.
	assert.ErrorIs(t, svc.StartGame(g.ID), ErrMissingSpymasters)
	got, ok := svc.GetGame(g.ID)
	require.True(t, ok)
	assert.Equal(t, types.GameStateLobby, got.State)
	assert.Empty(t, got.Cards)

	_, err = svc.AddPlayer(g.ID, "p2", "Bob")
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(g.ID, "p2", types.TeamBlue, types.RoleSpymaster))

	require.NoError(t, svc.StartGame(g.ID))
	assert.Equal(t, types.GameStateInProgress, got.State)

	// Started games cannot start again.
	assert.ErrorIs(t, svc.StartGame(g.ID), ErrGameNotInLobby)
}

func TestService_StartGame_BoardComposition(t *testing.T) {
	// The coin flip and shuffle are random, so check the invariants over
	// a number of fresh boards.
	for i := 0; i < 20; i++ {
		svc := newTestService()
		g, err := svc.CreateGame()
		require.NoError(t, err)
		addTestPlayers(t, svc, g.ID)
		require.NoError(t, svc.StartGame(g.ID))

		got, ok := svc.GetGame(g.ID)
		require.True(t, ok)
		require.Len(t, got.Cards, types.BoardSize)

		counts := make(map[types.CardType]int)
		positions := make(map[int]bool)
		words := make(map[string]bool)
		for pos, card := range got.Cards {
			counts[card.Type]++
			assert.Equal(t, pos, card.Position)
			assert.False(t, positions[card.Position], "duplicate position %d", card.Position)
			positions[card.Position] = true
			assert.False(t, words[card.Word], "duplicate word %s", card.Word)
			words[card.Word] = true
			assert.False(t, card.Revealed)
		}

		assert.Equal(t, 1, counts[types.CardTypeAssassin])
		assert.Equal(t, types.NeutralCards, counts[types.CardTypeNeutral])
		assert.Equal(t, types.StartingTeamCards, counts[types.TeamCardType(got.StartingTeam)])
		assert.Equal(t, types.SecondTeamCards, counts[types.TeamCardType(got.StartingTeam.Opponent())])
		assert.Equal(t, got.StartingTeam, got.CurrentTeam)
	}
}

func TestService_GiveClue(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	// Operatives cannot give clues.
	_, err := svc.GiveClue(gameID, "b", "apple", 2)
	assert.ErrorIs(t, err, ErrNotSpymaster)

	// The blue spymaster is not up.
	_, err = svc.GiveClue(gameID, "c", "apple", 2)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Negative numbers and empty words are rejected.
	_, err = svc.GiveClue(gameID, "a", "apple", -1)
	assert.ErrorIs(t, err, ErrInvalidClue)
	_, err = svc.GiveClue(gameID, "a", "   ", 2)
	assert.ErrorIs(t, err, ErrInvalidClue)

	clue, err := svc.GiveClue(gameID, "a", " apple ", 2)
	require.NoError(t, err)
	assert.Equal(t, "APPLE", clue.Word)
	assert.Equal(t, 2, clue.Number)
	assert.Equal(t, types.TeamRed, clue.Team)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, 3, g.GuessesRemaining, "guesses must be number+1")
	assert.Equal(t, clue, g.CurrentClue)
	assert.Equal(t, []*types.Clue{clue}, g.ClueHistory)

	// Only one active clue per turn.
	_, err = svc.GiveClue(gameID, "a", "orange", 1)
	assert.ErrorIs(t, err, ErrClueAlreadyGiven)

	// A zero clue still allows the single bonus guess.
	require.NoError(t, svc.EndTurn(gameID, "b"))
	clue, err = svc.GiveClue(gameID, "c", "zero", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.GuessesRemaining)
	require.Len(t, g.ClueHistory, 2)
	assert.Equal(t, clue, g.ClueHistory[1])
}

func TestService_RevealCard_Validation(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	// No clue yet.
	_, err := svc.RevealCard(gameID, "b", 0)
	assert.ErrorIs(t, err, ErrWaitForClue)

	_, err = svc.GiveClue(gameID, "a", "apple", 1)
	require.NoError(t, err)

	// Spymasters cannot guess.
	_, err = svc.RevealCard(gameID, "a", 0)
	assert.ErrorIs(t, err, ErrOnlyOperatives)

	// Blue operative is not up.
	_, err = svc.RevealCard(gameID, "d", 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Position bounds.
	_, err = svc.RevealCard(gameID, "b", -1)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = svc.RevealCard(gameID, "b", types.BoardSize)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	// Already revealed cards stay revealed.
	result, err := svc.RevealCard(gameID, "b", 0)
	require.NoError(t, err)
	assert.True(t, result.Card.Revealed)
	_, err = svc.RevealCard(gameID, "b", 0)
	assert.ErrorIs(t, err, ErrCardRevealed)
	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.True(t, g.Cards[0].Revealed, "reveals are monotonic")

	// Validation failures must not consume guesses.
	assert.Equal(t, 1, g.GuessesRemaining)
}

func TestService_RevealCard_CorrectGuessContinues(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)
	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 0)
	require.NoError(t, err)
	assert.False(t, result.TurnEnded)
	assert.False(t, result.GameOver)
	assert.Equal(t, types.CardTypeRed, result.Card.Type)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, 2, g.GuessesRemaining)
	assert.Equal(t, types.TeamRed, g.CurrentTeam)
	assert.NotNil(t, g.CurrentClue)
}

func TestService_RevealCard_WrongTeamEndsTurn(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)
	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	// A blue card with guesses still remaining ends the turn immediately.
	result, err := svc.RevealCard(gameID, "b", 9)
	require.NoError(t, err)
	assert.True(t, result.TurnEnded)
	assert.False(t, result.GameOver)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.TeamBlue, g.CurrentTeam)
	assert.Nil(t, g.CurrentClue)
	assert.Equal(t, 0, g.GuessesRemaining)
}

func TestService_RevealCard_NeutralEndsTurn(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)
	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 17)
	require.NoError(t, err)
	assert.True(t, result.TurnEnded)
	assert.False(t, result.GameOver)
}

func TestService_RevealCard_GuessesExhaustedEndsTurn(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)
	_, err := svc.GiveClue(gameID, "a", "apple", 0)
	require.NoError(t, err)

	// One correct guess on a 0 clue uses the bonus guess and ends the turn.
	result, err := svc.RevealCard(gameID, "b", 0)
	require.NoError(t, err)
	assert.True(t, result.TurnEnded)
	assert.False(t, result.GameOver)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.TeamBlue, g.CurrentTeam)
}

func TestService_RevealCard_AssassinEndsGame(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)
	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 24)
	require.NoError(t, err)
	assert.True(t, result.GameOver)
	assert.False(t, result.TurnEnded)
	assert.Equal(t, types.TeamBlue, result.Winner)
	assert.Equal(t, ReasonAssassin, result.Reason)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.GameStateFinished, g.State)
	assert.Equal(t, types.TeamBlue, g.Winner)

	// No further actions once finished.
	_, err = svc.RevealCard(gameID, "b", 1)
	assert.ErrorIs(t, err, ErrGameNotInProgress)
	_, err = svc.GiveClue(gameID, "c", "orange", 1)
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestService_RevealCard_AssassinBeatsExhaustion(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	// Engineer a board where the reveal of the assassin coincides with red
	// having no cards left: the assassin check must win.
	r, ok := svc.getRoom(gameID)
	require.True(t, ok)
	for i := 0; i < 9; i++ {
		r.game.Cards[i].Revealed = true
	}

	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 24)
	require.NoError(t, err)
	assert.True(t, result.GameOver)
	assert.Equal(t, types.TeamBlue, result.Winner)
	assert.Equal(t, ReasonAssassin, result.Reason)
}

func TestService_RevealCard_LastCardWins(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	r, ok := svc.getRoom(gameID)
	require.True(t, ok)
	for i := 0; i < 8; i++ {
		r.game.Cards[i].Revealed = true
	}

	_, err := svc.GiveClue(gameID, "a", "apple", 0)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 8)
	require.NoError(t, err)
	assert.True(t, result.GameOver)
	assert.False(t, result.TurnEnded)
	assert.Equal(t, types.TeamRed, result.Winner)
	assert.Equal(t, ReasonAllCardsRevealed, result.Reason)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.GameStateFinished, g.State)
}

func TestService_RevealCard_LastOpponentCardLosesTurnWinsGame(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	// Red reveals blue's last card: blue wins by exhaustion.
	r, ok := svc.getRoom(gameID)
	require.True(t, ok)
	for i := 9; i < 16; i++ {
		r.game.Cards[i].Revealed = true
	}

	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	result, err := svc.RevealCard(gameID, "b", 16)
	require.NoError(t, err)
	assert.True(t, result.GameOver)
	assert.Equal(t, types.TeamBlue, result.Winner)
	assert.Equal(t, ReasonAllCardsRevealed, result.Reason)
}

func TestService_EndTurn(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	// Voluntary end requires an active clue.
	assert.ErrorIs(t, svc.EndTurn(gameID, "b"), ErrWaitForClue)

	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.EndTurn(gameID, "d"), ErrNotYourTurn)
	assert.ErrorIs(t, svc.EndTurn(gameID, "nope"), ErrPlayerNotFound)

	require.NoError(t, svc.EndTurn(gameID, "b"))
	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, types.TeamBlue, g.CurrentTeam)
	assert.Nil(t, g.CurrentClue)
	assert.Equal(t, 0, g.GuessesRemaining)
}

func TestService_ResetGame(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	_, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)
	_, err = svc.RevealCard(gameID, "b", 24)
	require.NoError(t, err)

	require.NoError(t, svc.ResetGame(gameID))
	assert.ErrorIs(t, svc.ResetGame("NOSUCH"), ErrGameNotFound)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, gameID, g.ID, "reset must preserve the game identifier")
	assert.Equal(t, types.GameStateLobby, g.State)
	assert.Empty(t, g.Cards)
	assert.Nil(t, g.CurrentClue)
	assert.Empty(t, g.ClueHistory)
	assert.Equal(t, 0, g.GuessesRemaining)
	assert.Empty(t, g.Winner)
	assert.Empty(t, g.CurrentTeam)
	assert.Empty(t, g.StartingTeam)

	// Roster and roles survive the reset.
	require.Len(t, g.Players, 4)
	assert.Equal(t, types.RoleSpymaster, g.Players["a"].Role)
	assert.Equal(t, types.TeamBlue, g.Players["d"].Team)
}

func TestService_DeleteGame(t *testing.T) {
	svc := newTestService()
	g, err := svc.CreateGame()
	require.NoError(t, err)

	assert.True(t, svc.DeleteGame(g.ID))
	assert.False(t, svc.DeleteGame(g.ID))
	assert.False(t, svc.Exists(g.ID))
	_, ok := svc.GetGame(g.ID)
	assert.False(t, ok)
}

// TestService_FullScenario walks the reference game: four players join,
// red starts, red gives ("apple", 2), reveals a red card, then a blue
// card, and the turn flips to blue.
func TestService_FullScenario(t *testing.T) {
	svc := newTestService()
	gameID := startFixedGame(t, svc)

	clue, err := svc.GiveClue(gameID, "a", "apple", 2)
	require.NoError(t, err)
	assert.Equal(t, "APPLE", clue.Word)

	g, ok := svc.GetGame(gameID)
	require.True(t, ok)
	assert.Equal(t, 3, g.GuessesRemaining)

	result, err := svc.RevealCard(gameID, "b", 0)
	require.NoError(t, err)
	assert.False(t, result.TurnEnded)
	assert.Equal(t, 2, g.GuessesRemaining)
	assert.Equal(t, types.TeamRed, g.CurrentTeam)

	result, err = svc.RevealCard(gameID, "b", 9)
	require.NoError(t, err)
	assert.True(t, result.TurnEnded)
	assert.Equal(t, types.TeamBlue, g.CurrentTeam)
	assert.Nil(t, g.CurrentClue)
	assert.Equal(t, 0, g.GuessesRemaining)
}
