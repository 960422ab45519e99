package domain

// Game referees one match: it owns the authoritative board and decides whose turn it is.
type Game struct {
	Board       *Board
	CurrentSide Side
	Status      GameStatus
	Winner      Side // zero on a draw or while active
	MoveCount   int
	History     []Move // every ply, passes included
}

func NewGame() *Game {
	return NewGameFromBoard(NewBoard(), Black)
}

// NewGameFromBoard starts refereeing an arbitrary position with toMove to play.
// If toMove has no move the turn passes immediately.
func NewGameFromBoard(board *Board, toMove Side) *Game {
	g := &Game{
		Board:       board,
		CurrentSide: toMove,
		Status:      StatusActive,
	}
	g.advance(toMove.Opponent())
	return g
}

func (g *Game) MakeMove(side Side, m Move) error {
	if g.Status != StatusActive {
		return ErrGameFinished
	}
	if g.CurrentSide != side {
		return ErrNotYourTurn
	}
	if err := g.Board.Play(m, side); err != nil {
		return err
	}

	g.MoveCount++
	g.History = append(g.History, m)
	g.advance(side)
	return nil
}

// Pass is only accepted when side truly has nothing to play
func (g *Game) Pass(side Side) error {
	if g.Status != StatusActive {
		return ErrGameFinished
	}
	if g.CurrentSide != side {
		return ErrNotYourTurn
	}
	if g.Board.HasAnyLegalMove(side) {
		return ErrCannotPass
	}
	g.History = append(g.History, Pass)
	g.advance(side)
	return nil
}

// advance hands the turn to the side after last, recording forced passes,
// and finishes the game when nobody can move.
func (g *Game) advance(last Side) {
	next := last.Opponent()
	switch {
	case g.Board.HasAnyLegalMove(next):
		g.CurrentSide = next
	case g.Board.HasAnyLegalMove(last):
		g.History = append(g.History, Pass)
		g.CurrentSide = last
	default:
		g.finish()
	}
}

func (g *Game) finish() {
	g.Status = StatusFinished
	if winner, ok := g.Board.Winner(); ok {
		g.Winner = winner
	} else {
		g.Winner = 0
	}
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusFinished
}

// Resign ends the game in favour of side's opponent
func (g *Game) Resign(side Side) {
	g.Status = StatusFinished
	g.Winner = side.Opponent()
}
