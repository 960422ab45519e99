package domain

import (
	"fmt"
	"strings"
)

// the eight directions a capture run can follow
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is a full Othello position indexed as cells[x][y].
// It is a plain value: copying the struct copies the whole grid.
type Board struct {
	cells  [BoardSize][BoardSize]Cell
	counts [3]int // indexed by Cell; counts[Empty] is unused
}

// NewBoard returns the standard starting position
func NewBoard() *Board {
	b := &Board{}
	mid := BoardSize / 2
	b.set(mid-1, mid-1, WhiteDisc)
	b.set(mid, mid, WhiteDisc)
	b.set(mid-1, mid, BlackDisc)
	b.set(mid, mid-1, BlackDisc)
	return b
}

// ParseBoard builds a position from eight rows, one per y, each holding eight
// characters indexed by x: '.' or '-' for empty, 'B'/'X' for black, 'W'/'O' for white.
func ParseBoard(rows []string) (*Board, error) {
	if len(rows) != BoardSize {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, BoardSize, len(rows))
	}
	b := &Board{}
	for y, row := range rows {
		if len(row) != BoardSize {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, y, len(row))
		}
		for x := 0; x < BoardSize; x++ {
			switch row[x] {
			case '.', '-':
			case 'B', 'b', 'X', 'x':
				b.set(x, y, BlackDisc)
			case 'W', 'w', 'O', 'o':
				b.set(x, y, WhiteDisc)
			default:
				return nil, fmt.Errorf("%w: unexpected %q at (%d, %d)", ErrInvalidBoard, row[x], x, y)
			}
		}
	}
	return b, nil
}

// BoardFromCells is the inverse of Cells
func BoardFromCells(cells [][]int) (*Board, error) {
	if len(cells) != BoardSize {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, BoardSize, len(cells))
	}
	b := &Board{}
	for y, row := range cells {
		if len(row) != BoardSize {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, y, len(row))
		}
		for x, v := range row {
			c := Cell(v)
			if c != Empty && c != BlackDisc && c != WhiteDisc {
				return nil, fmt.Errorf("%w: unexpected value %d at (%d, %d)", ErrInvalidBoard, v, x, y)
			}
			if c != Empty {
				b.set(x, y, c)
			}
		}
	}
	return b, nil
}

func (b *Board) set(x, y int, c Cell) {
	if old := b.cells[x][y]; old != Empty {
		b.counts[old]--
	}
	b.cells[x][y] = c
	if c != Empty {
		b.counts[c]++
	}
}

// Copy returns an independent snapshot of the board
func (b *Board) Copy() *Board {
	newBoard := *b
	return &newBoard
}

func (b *Board) At(x, y int) Cell {
	return b.cells[x][y]
}

func (b *Board) Count(side Side) int {
	return b.counts[CellOf(side)]
}

// Total is the number of occupied cells
func (b *Board) Total() int {
	return b.counts[BlackDisc] + b.counts[WhiteDisc]
}

// flipsInDirection returns how many opponent discs a disc at (x, y) would capture along (dx, dy)
func (b *Board) flipsInDirection(x, y, dx, dy int, own Cell) int {
	opp := CellOf(Side(own).Opponent())
	n := 0
	cx, cy := x+dx, y+dy
	for cx >= 0 && cx < BoardSize && cy >= 0 && cy < BoardSize {
		switch b.cells[cx][cy] {
		case opp:
			n++
		case own:
			return n
		default:
			return 0
		}
		cx += dx
		cy += dy
	}
	return 0
}

// IsLegal reports whether side may play m: the square must be empty and
// the placement must capture at least one opponent run.
func (b *Board) IsLegal(m Move, side Side) bool {
	if !m.InBounds() || !side.Valid() {
		return false
	}
	if b.cells[m.X][m.Y] != Empty {
		return false
	}
	own := CellOf(side)
	for _, d := range directions {
		if b.flipsInDirection(m.X, m.Y, d[0], d[1], own) > 0 {
			return true
		}
	}
	return false
}

// Apply places side's disc at m and flips every captured run. The move must
// already be known to be legal. Applying Pass does nothing.
func (b *Board) Apply(m Move, side Side) {
	if m.IsPass() {
		return
	}
	own := CellOf(side)
	for _, d := range directions {
		n := b.flipsInDirection(m.X, m.Y, d[0], d[1], own)
		for i := 1; i <= n; i++ {
			b.set(m.X+d[0]*i, m.Y+d[1]*i, own)
		}
	}
	b.set(m.X, m.Y, own)
}

// Play is Apply guarded by the legality check
func (b *Board) Play(m Move, side Side) error {
	if !b.IsLegal(m, side) {
		return fmt.Errorf("%w: %s for %s", ErrIllegalMove, m, side)
	}
	b.Apply(m, side)
	return nil
}

// LegalMoves enumerates side's moves with x ascending in the outer loop and y in the inner one
func (b *Board) LegalMoves(side Side) []Move {
	var moves []Move
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			m := Move{X: x, Y: y}
			if b.IsLegal(m, side) {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

func (b *Board) HasAnyLegalMove(side Side) bool {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.IsLegal(Move{X: x, Y: y}, side) {
				return true
			}
		}
	}
	return false
}

func (b *Board) IsGameOver() bool {
	return !b.HasAnyLegalMove(Black) && !b.HasAnyLegalMove(White)
}

// Winner returns the side with more discs; ok is false on a tie
func (b *Board) Winner() (winner Side, ok bool) {
	black, white := b.Count(Black), b.Count(White)
	switch {
	case black > white:
		return Black, true
	case white > black:
		return White, true
	}
	return 0, false
}

// Cells returns the grid as rows indexed [y][x] for JSON and storage
func (b *Board) Cells() [][]int {
	rows := make([][]int, BoardSize)
	for y := 0; y < BoardSize; y++ {
		rows[y] = make([]int, BoardSize)
		for x := 0; x < BoardSize; x++ {
			rows[y][x] = int(b.cells[x][y])
		}
	}
	return rows
}

func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for y := 0; y < BoardSize; y++ {
		fmt.Fprintf(&sb, "%d", y+1)
		for x := 0; x < BoardSize; x++ {
			switch b.cells[x][y] {
			case BlackDisc:
				sb.WriteString(" B")
			case WhiteDisc:
				sb.WriteString(" W")
			default:
				sb.WriteString(" .")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
