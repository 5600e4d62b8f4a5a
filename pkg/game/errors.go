package game

import "errors"

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameNotInLobby     = errors.New("game not in lobby")
	ErrGameNotInProgress  = errors.New("game not in progress")
	ErrSpymasterTaken     = errors.New("spymaster already taken for team")
	ErrMissingSpymasters  = errors.New("need at least one spymaster per team")
	ErrNotYourTurn        = errors.New("not your team's turn")
	ErrNotSpymaster       = errors.New("only the spymaster may give clues")
	ErrOnlyOperatives     = errors.New("only operatives can guess")
	ErrClueAlreadyGiven   = errors.New("clue already given this turn")
	ErrWaitForClue        = errors.New("wait for spymaster clue")
	ErrNoGuessesRemaining = errors.New("no guesses remaining")
	ErrInvalidPosition    = errors.New("invalid card position")
	ErrCardRevealed       = errors.New("card already revealed")
	ErrInvalidClue        = errors.New("invalid clue")
)
