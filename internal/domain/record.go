package domain

import "time"

// GameRecord is what gets persisted once a human vs bot game ends.
type GameRecord struct {
	GameID        string
	UserID        int64
	Username      string
	HumanSide     Side
	BotName       string
	BotDifficulty string
	Winner        string // username, bot name or "draw"
	WinnerSide    Side   // zero on a draw
	Reason        string
	Moves         []Move
	BlackCount    int
	WhiteCount    int
	Board         [][]int
	CreatedAt     time.Time
	FinishedAt    time.Time
}

func (r *GameRecord) DurationSeconds() int {
	return int(r.FinishedAt.Sub(r.CreatedAt).Seconds())
}

// HumanScore is the Elo score of the human: 1 win, 0.5 draw, 0 loss
func (r *GameRecord) HumanScore() float64 {
	switch r.WinnerSide {
	case r.HumanSide:
		return 1.0
	case 0:
		return 0.5
	default:
		return 0.0
	}
}

// LiveGame is the snapshot of an in-progress game published for spectators.
type LiveGame struct {
	GameID        string    `json:"gameId"`
	Username      string    `json:"username"`
	BotName       string    `json:"botName"`
	BotDifficulty string    `json:"botDifficulty"`
	HumanSide     string    `json:"humanSide"`
	CurrentTurn   string    `json:"currentTurn"`
	Board         [][]int   `json:"board"`
	BlackCount    int       `json:"blackCount"`
	WhiteCount    int       `json:"whiteCount"`
	MoveCount     int       `json:"moveCount"`
	LastMove      *Move     `json:"lastMove,omitempty"`
	Finished      bool      `json:"finished"`
	StartedAt     time.Time `json:"startedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
