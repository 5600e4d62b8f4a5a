package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/cbodonnell/codenames/pkg/game/types"
)

const (
	// GameIDLength is the length of a generated game identifier.
	GameIDLength = 6
	// GameIDMaxRetries is the maximum number of retries when generating a unique game ID
	GameIDMaxRetries = 1024
)

// Turn end reasons reported by RevealCard.
const (
	ReasonAssassin         = "assassin"
	ReasonAllCardsRevealed = "all_cards_revealed"
)

// WordSource provides distinct random words for a board.
type WordSource interface {
	Pick(n int) ([]string, error)
}

// room pairs a game with the mutex that serializes all operations on it.
// Rooms are isolated from each other: no operation holds more than one
// room lock at a time.
type room struct {
	mu   sync.Mutex
	game *types.Game
}

// Service is the authoritative rules engine. It owns the registry of
// active games and validates and applies every player action.
type Service struct {
	lock  sync.RWMutex
	rooms map[string]*room
	words WordSource
}

type NewServiceOptions struct {
	Words WordSource
}

func NewService(opts NewServiceOptions) *Service {
	return &Service{
		rooms: make(map[string]*room),
		words: opts.Words,
	}
}

// CreateGame creates a new game in lobby state under a freshly generated
// unique identifier.
func (s *Service) CreateGame() (*types.Game, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, err := s.generateGameID(GameIDMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique game ID: %v", err)
	}

	game := types.NewGame(id)
	s.rooms[id] = &room{game: game}
	return game, nil
}

// generateGameID generates a unique game ID with a maximum number of retries.
// It reads from the rooms map, so the service lock must be held.
func (s *Service) generateGameID(maxRetries int) (string, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		b := make([]byte, GameIDLength)
		for i := range b {
			b[i] = byte('A' + rand.Intn(26))
		}
		id := string(b)
		if _, ok := s.rooms[id]; !ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique game ID after %d attempts", maxRetries)
}

func (s *Service) getRoom(gameID string) (*room, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	r, ok := s.rooms[gameID]
	return r, ok
}

// GetGame retrieves a game by ID. The returned game is shared state and
// must not be mutated by callers.
func (s *Service) GetGame(gameID string) (*types.Game, bool) {
	r, ok := s.getRoom(gameID)
	if !ok {
		return nil, false
	}
	return r.game, true
}

// Exists reports whether a game with the given ID is live.
func (s *Service) Exists(gameID string) bool {
	_, ok := s.getRoom(gameID)
	return ok
}

// DeleteGame removes a game from the registry.
func (s *Service) DeleteGame(gameID string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.rooms[gameID]; !ok {
		return false
	}
	delete(s.rooms, gameID)
	return true
}

// AddPlayer adds a player to a game. Re-joining with a known player ID
// returns the existing player unchanged.
func (s *Service) AddPlayer(gameID, playerID, name string) (*types.Player, error) {
	r, ok := s.getRoom(gameID)
	if !ok {
		return nil, ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if player, ok := r.game.Players[playerID]; ok {
		return player, nil
	}

	player := &types.Player{ID: playerID, Name: name}
	r.game.Players[playerID] = player
	return player, nil
}

// RemovePlayer removes a player from a game. Turn state is deliberately
// left untouched, even if the removed player gave the active clue.
func (s *Service) RemovePlayer(gameID, playerID string) bool {
	r, ok := s.getRoom(gameID)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.game.Players[playerID]; !ok {
		return false
	}
	delete(r.game.Players, playerID)
	return true
}

// AssignRole assigns a team and role to a player while the game is in the
// lobby. At most one spymaster is allowed per team.
func (s *Service) AssignRole(gameID, playerID string, team types.Team, role types.Role) error {
	r, ok := s.getRoom(gameID)
	if !ok {
		return ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.game.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if r.game.State != types.GameStateLobby {
		return ErrGameNotInLobby
	}
	if role == types.RoleSpymaster {
		for _, p := range r.game.Players {
			if p.ID != playerID && p.Team == team && p.Role == types.RoleSpymaster {
				return ErrSpymasterTaken
			}
		}
	}

	player.Team = team
	player.Role = role
	return nil
}

// StartGame builds the board and transitions the game to in progress.
// Both teams must have a spymaster. On failure the game is unchanged.
func (s *Service) StartGame(gameID string) error {
	r, ok := s.getRoom(gameID)
	if !ok {
		return ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	game := r.game
	if game.State != types.GameStateLobby {
		return ErrGameNotInLobby
	}
	if !game.HasSpymaster(types.TeamRed) || !game.HasSpymaster(types.TeamBlue) {
		return ErrMissingSpymasters
	}

	words, err := s.words.Pick(types.BoardSize)
	if err != nil {
		return fmt.Errorf("failed to pick board words: %w", err)
	}

	// Coin flip for the starting team, which gets the extra card.
	startingTeam := types.TeamRed
	if rand.Intn(2) == 1 {
		startingTeam = types.TeamBlue
	}

	cardTypes := make([]types.CardType, 0, types.BoardSize)
	for i := 0; i < types.StartingTeamCards; i++ {
		cardTypes = append(cardTypes, types.TeamCardType(startingTeam))
	}
	for i := 0; i < types.SecondTeamCards; i++ {
		cardTypes = append(cardTypes, types.TeamCardType(startingTeam.Opponent()))
	}
	for i := 0; i < types.NeutralCards; i++ {
		cardTypes = append(cardTypes, types.CardTypeNeutral)
	}
	cardTypes = append(cardTypes, types.CardTypeAssassin)

	rand.Shuffle(len(cardTypes), func(i, j int) {
		cardTypes[i], cardTypes[j] = cardTypes[j], cardTypes[i]
	})

	cards := make([]*types.Card, types.BoardSize)
	for i := 0; i < types.BoardSize; i++ {
		cards[i] = &types.Card{
			Word:     words[i],
			Type:     cardTypes[i],
			Position: i,
		}
	}

	game.Cards = cards
	game.StartingTeam = startingTeam
	game.CurrentTeam = startingTeam
	game.State = types.GameStateInProgress
	return nil
}

// GiveClue records a clue from the current team's spymaster and opens the
// guessing window with number+1 guesses.
func (s *Service) GiveClue(gameID, playerID, word string, number int) (*types.Clue, error) {
	r, ok := s.getRoom(gameID)
	if !ok {
		return nil, ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	game := r.game
	if game.State != types.GameStateInProgress {
		return nil, ErrGameNotInProgress
	}

	player, ok := game.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if player.Role != types.RoleSpymaster {
		return nil, ErrNotSpymaster
	}
	if player.Team != game.CurrentTeam {
		return nil, ErrNotYourTurn
	}
	if game.CurrentClue != nil {
		return nil, ErrClueAlreadyGiven
	}

	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" || number < 0 {
		return nil, ErrInvalidClue
	}

	clue := &types.Clue{
		Word:   word,
		Number: number,
		Team:   game.CurrentTeam,
	}
	game.CurrentClue = clue
	game.ClueHistory = append(game.ClueHistory, clue)
	game.GuessesRemaining = number + 1
	return clue, nil
}

// RevealResult describes the outcome of a card reveal. Exactly one of
// GameOver and TurnEnded is set when the reveal ends anything; both are
// false while the turn continues.
type RevealResult struct {
	Card      *types.Card
	TurnEnded bool
	GameOver  bool
	Winner    types.Team
	Reason    string
}

// RevealCard reveals a card for an operative on the current team and
// evaluates outcomes in strict priority order: assassin, board exhaustion,
// wrong-team card, guess budget exhausted. On any validation failure
// no mutation occurs.
func (s *Service) RevealCard(gameID, playerID string, position int) (*RevealResult, error) {
	r, ok := s.getRoom(gameID)
	if !ok {
		return nil, ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	game := r.game
	if game.State != types.GameStateInProgress {
		return nil, ErrGameNotInProgress
	}

	player, ok := game.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if player.Role != types.RoleOperative {
		return nil, ErrOnlyOperatives
	}
	if player.Team != game.CurrentTeam {
		return nil, ErrNotYourTurn
	}
	if game.CurrentClue == nil {
		return nil, ErrWaitForClue
	}
	if game.GuessesRemaining <= 0 {
		return nil, ErrNoGuessesRemaining
	}
	if position < 0 || position >= types.BoardSize {
		return nil, ErrInvalidPosition
	}

	card := game.Cards[position]
	if card.Revealed {
		return nil, ErrCardRevealed
	}

	card.Revealed = true
	game.GuessesRemaining--

	result := &RevealResult{Card: card}

	// The assassin ends the game immediately, before any exhaustion check.
	if card.Type == types.CardTypeAssassin {
		game.State = types.GameStateFinished
		game.Winner = game.CurrentTeam.Opponent()
		result.GameOver = true
		result.Winner = game.Winner
		result.Reason = ReasonAssassin
		return result, nil
	}

	for _, team := range []types.Team{types.TeamRed, types.TeamBlue} {
		if game.CountRemaining(team) == 0 {
			game.State = types.GameStateFinished
			game.Winner = team
			result.GameOver = true
			result.Winner = team
			result.Reason = ReasonAllCardsRevealed
			return result, nil
		}
	}

	if card.Type != types.TeamCardType(game.CurrentTeam) {
		result.TurnEnded = true
		endTurn(game)
	} else if game.GuessesRemaining <= 0 {
		result.TurnEnded = true
		endTurn(game)
	}

	return result, nil
}

// EndTurn voluntarily ends the current team's turn. A clue must be active.
func (s *Service) EndTurn(gameID, playerID string) error {
	r, ok := s.getRoom(gameID)
	if !ok {
		return ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	game := r.game
	if game.State != types.GameStateInProgress {
		return ErrGameNotInProgress
	}

	player, ok := game.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if player.Team != game.CurrentTeam {
		return ErrNotYourTurn
	}
	if game.CurrentClue == nil {
		return ErrWaitForClue
	}

	endTurn(game)
	return nil
}

// endTurn flips the current team and closes the guessing window.
// The room lock must be held.
func endTurn(game *types.Game) {
	game.CurrentTeam = game.CurrentTeam.Opponent()
	game.CurrentClue = nil
	game.GuessesRemaining = 0
}

// ResetGame clears the board and turn state back to lobby defaults while
// preserving the player roster and the game identifier.
func (s *Service) ResetGame(gameID string) error {
	r, ok := s.getRoom(gameID)
	if !ok {
		return ErrGameNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	game := r.game
	game.State = types.GameStateLobby
	game.Cards = nil
	game.CurrentTeam = ""
	game.StartingTeam = ""
	game.CurrentClue = nil
	game.GuessesRemaining = 0
	game.Winner = ""
	game.ClueHistory = nil
	return nil
}

// View computes the projection of a game for a single recipient. The
// viewer sees hidden card types only if they are a spymaster. An empty
// or unknown player ID yields an unprivileged view.
func (s *Service) View(gameID, playerID string) (*types.GameView, bool) {
	r, ok := s.getRoom(gameID)
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	privileged := false
	if player, ok := r.game.Players[playerID]; ok {
		privileged = player.Role == types.RoleSpymaster
	}
	return ComputeView(r.game, privileged), true
}
