package domain

type ClientMessage struct {
	Type       string `json:"type"`
	JWT        string `json:"jwt,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Side       string `json:"side,omitempty"` // colour the human wants to play
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

type ServerMessage struct {
	Type         string  `json:"type"`
	Message      string  `json:"message,omitempty"`
	GameID       string  `json:"gameId,omitempty"`
	Opponent     string  `json:"opponent,omitempty"`
	YourSide     string  `json:"yourSide,omitempty"`
	CurrentTurn  string  `json:"currentTurn,omitempty"`
	Move         *Move   `json:"move,omitempty"`
	Side         string  `json:"side,omitempty"`
	Board        [][]int `json:"board,omitempty"`
	LegalMoves   []Move  `json:"legalMoves,omitempty"`
	BlackCount   int     `json:"blackCount,omitempty"`
	WhiteCount   int     `json:"whiteCount,omitempty"`
	Winner       string  `json:"winner,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	AllowRematch *bool   `json:"allowRematch,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
