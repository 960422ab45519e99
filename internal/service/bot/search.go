package bot

import (
	"math"

	"github.com/iamasit07/othello/backend/internal/domain"
)

// searchMode tracks how a node's children relate to the node's mover
type searchMode int

const (
	// the opponent replies; its best score is our worst
	normalAlternating searchMode = iota
	// the opponent must pass, so the mover plays again
	forcedExtraMove
)

func (m searchMode) multiplier() int {
	if m == forcedExtraMove {
		return 1
	}
	return -1
}

func (m searchMode) String() string {
	if m == forcedExtraMove {
		return "forced-extra-move"
	}
	return "normal-alternating"
}

// Stats counts the work done by one search
type Stats struct {
	Nodes        int `json:"nodes"`
	Leaves       int `json:"leaves"`
	Terminals    int `json:"terminals"`
	ForcedPasses int `json:"forcedPasses"`
}

// Searcher runs fixed-depth minimax in negamax form. Every node works on its
// own copy of the board, so sibling branches never share state.
type Searcher struct {
	eval  *Evaluator
	stats Stats
}

func NewSearcher(eval *Evaluator) *Searcher {
	return &Searcher{eval: eval}
}

func (s *Searcher) Stats() Stats {
	return s.stats
}

func (s *Searcher) ResetStats() {
	s.stats = Stats{}
}

// Search applies move for mover on a copy of state and scores the result from
// mover's point of view, looking remainingDepth further plies ahead. The move
// must be legal for mover.
func (s *Searcher) Search(state *domain.Board, move domain.Move, remainingDepth int, mover domain.Side) int {
	s.stats.Nodes++

	next := state.Copy()
	next.Apply(move, mover)

	mode := normalAlternating
	toMove := mover.Opponent()
	candidates := next.LegalMoves(toMove)
	if len(candidates) == 0 {
		own := next.LegalMoves(mover)
		if len(own) == 0 {
			s.stats.Terminals++
			return s.eval.Evaluate(next, move, mover, true)
		}
		mode = forcedExtraMove
		toMove, candidates = mover, own
	}

	if remainingDepth <= 0 {
		s.stats.Leaves++
		return s.eval.Evaluate(next, move, mover, false)
	}

	childDepth := remainingDepth - 1
	if mode == forcedExtraMove {
		s.stats.ForcedPasses++
		// the skipped ply costs one level, the extra move another
		if remainingDepth < 2 {
			return s.eval.Evaluate(next, move, mover, true)
		}
		childDepth = remainingDepth - 2
	}

	best := math.MinInt
	for _, m := range candidates {
		if score := s.Search(next, m, childDepth, toMove); score > best {
			best = score
		}
	}

	return s.eval.Positional(move) + mode.multiplier()*best
}
