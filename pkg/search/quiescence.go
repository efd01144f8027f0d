package search

import (
	"context"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// deltaMargin is the safety margin added to a captured piece's nominal value in delta
// pruning: a capture that can't plausibly close the gap to alpha even at best is skipped
// without being searched.
const deltaMargin eval.Score = 200

// Quiescence searches captures and promotions beyond the horizon to avoid misjudging a
// position in the middle of an exchange. When in check, all evasions are searched instead,
// since a side to move in check has no useful stand-pat score. Implements QuietSearch.
type Quiescence struct {
	Eval eval.Evaluator

	// NoDeltaPruning disables delta pruning, searching every capture regardless of whether
	// it could plausibly reach alpha. Off (pruning enabled) by default.
	NoDeltaPruning bool
}

func (q Quiescence) QuietSearch(ctx context.Context, sctx *Context, b *board.Board) (uint64, eval.Score) {
	run := &runQuiescence{eval: q.Eval, noise: sctx.Noise, noDelta: q.NoDeltaPruning, b: b}

	low, high := eval.NegInfScore, eval.InfScore
	if !sctx.Alpha.IsInvalid() {
		low = sctx.Alpha
	}
	if !sctx.Beta.IsInvalid() {
		high = sctx.Beta
	}

	score := run.search(ctx, low, high, 0)
	return run.nodes, score
}

type runQuiescence struct {
	eval    eval.Evaluator
	noise   eval.Random
	noDelta bool
	b       *board.Board
	nodes   uint64
}

// search returns the fail-soft score for the side to move.
func (r *runQuiescence) search(ctx context.Context, alpha, beta eval.Score, ply int) eval.Score {
	if r.nodes%abortCheckInterval == 0 && contextx.IsCancelled(ctx) {
		return eval.ZeroScore
	}
	if r.b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}
	r.nodes++

	inCheck := r.b.Position().IsChecked(r.b.Turn())

	standPat := r.eval.Evaluate(ctx, r.b) + r.noise.Evaluate(ctx, r.b)
	best := standPat
	if !inCheck {
		if standPat >= beta {
			return standPat // fail-high: stand pat is already good enough
		}
		if alpha < standPat {
			alpha = standPat
		}
	}

	moves := board.NewMoveList(r.b.Position().PseudoLegalMoves(r.b.Turn()), MVVLVA)
	hasLegalMove := false
	for {
		m, ok := moves.Next()
		if !ok {
			break
		}

		if !inCheck {
			if !m.IsCapture() && !m.IsPromotion() {
				continue
			}
			if !r.noDelta && m.IsCapture() && standPat+eval.NominalValue(m.Capture)+deltaMargin < alpha {
				continue // delta pruning: even winning the piece can't reach alpha
			}
		}

		if !r.b.PushMove(m) {
			continue
		}
		hasLegalMove = true

		score := eval.IncrementMateDistance(r.search(ctx, beta.Negate(), alpha.Negate(), ply+1)).Negate()
		r.b.PopMove()

		if best < score {
			best = score
		}
		if alpha < score {
			alpha = score
		}
		if alpha >= beta {
			break // fail-soft cutoff
		}
	}

	if inCheck && !hasLegalMove {
		if result := r.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.NegMateScore
		}
		return eval.ZeroScore
	}

	return best
}
