package types

import (
	"time"
)

const (
	// BoardSize is the number of cards on a board.
	BoardSize = 25
	// StartingTeamCards is the card count for the team that goes first.
	StartingTeamCards = 9
	// SecondTeamCards is the card count for the team that goes second.
	SecondTeamCards = 8
	// NeutralCards is the number of neutral cards on a board.
	NeutralCards = 7
)

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

type Role string

const (
	RoleSpymaster Role = "spymaster"
	RoleOperative Role = "operative"
)

type CardType string

const (
	CardTypeRed      CardType = "red"
	CardTypeBlue     CardType = "blue"
	CardTypeNeutral  CardType = "neutral"
	CardTypeAssassin CardType = "assassin"
)

// TeamCardType returns the card type belonging to a team.
func TeamCardType(team Team) CardType {
	if team == TeamRed {
		return CardTypeRed
	}
	return CardTypeBlue
}

type GameState string

const (
	GameStateLobby      GameState = "lobby"
	GameStateInProgress GameState = "in_progress"
	GameStateFinished   GameState = "finished"
)

// Card is a single board card. Revealed is the only mutable field and
// only ever transitions false to true.
type Card struct {
	Word     string   `json:"word"`
	Type     CardType `json:"type"`
	Revealed bool     `json:"revealed"`
	Position int      `json:"position"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team,omitempty"`
	Role Role   `json:"role,omitempty"`
}

// Clue is immutable once created and appended to the clue history.
type Clue struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
	Team   Team   `json:"team"`
}

// Game is the aggregate root for a single room. All mutation goes through
// the game service, which serializes access per room.
type Game struct {
	ID               string
	State            GameState
	Cards            []*Card
	Players          map[string]*Player
	CurrentTeam      Team
	StartingTeam     Team
	CurrentClue      *Clue
	GuessesRemaining int
	Winner           Team
	ClueHistory      []*Clue
	CreatedAt        time.Time
}

func NewGame(id string) *Game {
	return &Game{
		ID:        id,
		State:     GameStateLobby,
		Players:   make(map[string]*Player),
		CreatedAt: time.Now(),
	}
}

// CountRemaining returns the number of unrevealed cards for a team.
func (g *Game) CountRemaining(team Team) int {
	count := 0
	cardType := TeamCardType(team)
	for _, card := range g.Cards {
		if card.Type == cardType && !card.Revealed {
			count++
		}
	}
	return count
}

// HasSpymaster reports whether a team has a spymaster assigned.
func (g *Game) HasSpymaster(team Team) bool {
	for _, p := range g.Players {
		if p.Team == team && p.Role == RoleSpymaster {
			return true
		}
	}
	return false
}
