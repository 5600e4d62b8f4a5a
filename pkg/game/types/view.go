package types

// CardView is the per-recipient serialization of a card. Type is omitted
// for unrevealed cards when the viewer is not a spymaster.
type CardView struct {
	Word     string   `json:"word"`
	Type     CardType `json:"type,omitempty"`
	Revealed bool     `json:"revealed"`
	Position int      `json:"position"`
}

// GameView is the full projected state sent to a single recipient.
type GameView struct {
	ID               string             `json:"id"`
	State            GameState          `json:"state"`
	Players          map[string]*Player `json:"players"`
	CurrentTeam      Team               `json:"currentTeam,omitempty"`
	StartingTeam     Team               `json:"startingTeam,omitempty"`
	CurrentClue      *Clue              `json:"currentClue"`
	GuessesRemaining int                `json:"guessesRemaining"`
	Winner           Team               `json:"winner,omitempty"`
	RedRemaining     int                `json:"redRemaining"`
	BlueRemaining    int                `json:"blueRemaining"`
	ClueHistory      []*Clue            `json:"clueHistory"`
	Cards            []CardView         `json:"cards"`
}
