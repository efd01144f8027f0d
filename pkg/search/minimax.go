package search

import (
	"context"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// Minimax implements naive minimax search via negamax, without pruning. Useful as a
// reference for validating AlphaBeta against: both must agree on the score (modulo node
// count) for any position and depth. Pseudo-code:
//
// function negamax(node, depth) is
//
//	if depth = 0 or node is a terminal node then
//	    return the heuristic value of node
//	value := −∞
//	for each child of node do
//	    value := max(value, −negamax(child, depth − 1))
//	return value
//
// See: https://en.wikipedia.org/wiki/Minimax.
type Minimax struct {
	Eval eval.Evaluator
}

func (m Minimax) Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	run := &runMinimax{eval: m.Eval, b: b}
	score, moves := run.search(ctx, depth, 0)
	if score.IsInvalid() {
		return run.nodes, eval.InvalidScore, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runMinimax struct {
	eval  eval.Evaluator
	b     *board.Board
	nodes uint64
}

// search returns the fail-soft score for the side to move.
func (m *runMinimax) search(ctx context.Context, depth, ply int) (eval.Score, []board.Move) {
	m.nodes++

	if m.nodes%abortCheckInterval == 0 && contextx.IsCancelled(ctx) {
		return eval.InvalidScore, nil
	}
	if m.b.Result().Outcome == board.Draw {
		return eval.ZeroScore, nil
	}
	if depth == 0 {
		return m.eval.Evaluate(ctx, m.b), nil
	}

	hasLegalMove := false
	score := eval.NegInfScore
	var pv []board.Move

	moves := m.b.Position().PseudoLegalMoves(m.b.Turn())
	for _, move := range moves {
		if !m.b.PushMove(move) {
			continue
		}
		hasLegalMove = true

		s, rem := m.search(ctx, depth-1, ply+1)
		m.b.PopMove()

		if s.IsInvalid() {
			return eval.InvalidScore, nil
		}
		s = eval.IncrementMateDistance(s).Negate()
		if score < s {
			score = s
			pv = append([]board.Move{move}, rem...)
		}
	}

	if !hasLegalMove {
		if result := m.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.NegMateScore, nil
		}
		return eval.ZeroScore, nil
	}

	return score, pv
}
