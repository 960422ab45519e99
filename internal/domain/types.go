package domain

import "fmt"

var BotNames = map[string]string{
	"easy":   "Alice",
	"medium": "Bob",
	"hard":   "Charles",
}

// bot ratings used for Elo updates after a human vs bot game
var BotRatings = map[string]int{
	"easy":   800,
	"medium": 1200,
	"hard":   1600,
}

func GetBotName(difficulty string) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

func GetBotRating(difficulty string) int {
	if rating, ok := BotRatings[difficulty]; ok {
		return rating
	}
	return 1000
}

func IsBotName(username string) bool {
	if username == "BOT" {
		return true
	}
	for _, name := range BotNames {
		if username == name {
			return true
		}
	}
	return false
}

// Side is one of the two players. Black always moves first.
type Side int

const (
	Black Side = 1
	White Side = 2
)

func (s Side) Opponent() Side {
	if s == Black {
		return White
	}
	return Black
}

func (s Side) Valid() bool {
	return s == Black || s == White
}

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide accepts "black"/"white" (and the single letters b/w)
func ParseSide(s string) (Side, error) {
	switch s {
	case "black", "b", "B":
		return Black, nil
	case "white", "w", "W":
		return White, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

type Cell int

const (
	Empty     Cell = 0
	BlackDisc Cell = Cell(Black)
	WhiteDisc Cell = Cell(White)
)

func CellOf(s Side) Cell {
	return Cell(s)
}

const BoardSize = 8

// Move is a board coordinate. The zero value is the valid square (0,0);
// use Pass for "no move".
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pass is the sentinel for a passed turn (also used for "no previous move")
var Pass = Move{X: -1, Y: -1}

// NewMove validates the coordinates before building the move
func NewMove(x, y int) (Move, error) {
	if x < 0 || x >= BoardSize || y < 0 || y >= BoardSize {
		return Pass, fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, x, y)
	}
	return Move{X: x, Y: y}, nil
}

func (m Move) IsPass() bool {
	return m == Pass
}

func (m Move) InBounds() bool {
	return m.X >= 0 && m.X < BoardSize && m.Y >= 0 && m.Y < BoardSize
}

// String renders the move in algebraic form: column letter from X, row number from Y.
func (m Move) String() string {
	if m.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("%c%d", 'a'+rune(m.X), m.Y+1)
}

// ParseMove is the inverse of Move.String
func ParseMove(s string) (Move, error) {
	if s == "pass" {
		return Pass, nil
	}
	if len(s) != 2 {
		return Pass, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return NewMove(int(s[0]-'a'), int(s[1]-'1'))
}

// to represent the game status
type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrIllegalMove  Error = "illegal move"
	ErrOutOfRange   Error = "coordinates out of range"
	ErrNotYourTurn  Error = "not your turn"
	ErrGameFinished Error = "game is already finished"
	ErrCannotPass   Error = "cannot pass while a legal move exists"
	ErrInvalidBoard Error = "invalid board"
	ErrInvalidSide  Error = "invalid side"
)
