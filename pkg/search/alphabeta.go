package search

import (
	"context"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// abortCheckInterval is how often (in nodes) the search polls for cancellation.
const abortCheckInterval = 2048

// nullMoveReduction is the depth reduction R applied to a null-move search.
const nullMoveReduction = 2

// nullMoveMinDepth is the shallowest depth at which null-move pruning is attempted.
const nullMoveMinDepth = 3

// futilityMaxDepth is the deepest frontier node at which futility pruning applies.
const futilityMaxDepth = 2

// AlphaBeta implements fail-soft Negamax with Principal Variation Search, guided by a
// transposition table, null-move pruning, futility pruning at frontier nodes, and
// quiescence search at the horizon:
//
//	negamax(node, depth, alpha, beta, allowNull):
//	    if node is a draw: return 0
//	    if a TT entry at >= depth permits a cutoff at this window: return it
//	    if depth <= 0: return quiesce(node, alpha, beta)
//	    if allowNull and !inCheck and depth >= 3 and side has non-pawn material:
//	        if -negamax(nullmove(node), depth-1-R, -beta, -beta+1, false) >= beta: return beta
//	    for each move, ordered by TT move, then MVV-LVA, then killers:
//	        first move gets the full window; later moves get a null window, re-searched
//	        with the full window on a fail-high that isn't also a fail-low
//	        update alpha, best; break on alpha >= beta (record killer)
//	    store the result in the TT (EXACT if alpha improved, UPPER otherwise, LOWER on
//	    a cutoff); return best
//
// See: https://www.chessprogramming.org/Principal_Variation_Search,
// https://www.chessprogramming.org/Null_Move_Pruning.
type AlphaBeta struct {
	Explore  Exploration // move ordering and selection; defaults to FullExploration
	Eval     eval.Evaluator
	Quiesce  QuietSearch
	NullMove bool
	Futility bool

	// DisableKillers, if true, ignores the killer table entirely regardless of whether
	// the caller supplied one in the search Context. Set when Explore already encodes a
	// move order that should not be perturbed by killer bonuses (e.g. MoveOrder MVVLVAOrder).
	DisableKillers bool
	// KillerWeight scales the killer-move bonus. Zero means the default weight of 1.
	KillerWeight float64
}

func (p AlphaBeta) Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	killerWeight := p.KillerWeight
	if killerWeight == 0 {
		killerWeight = 1
	}

	run := &runAlphaBeta{
		explore:        fullIfNotSet(p.Explore),
		eval:           p.Eval,
		quiesce:        p.Quiesce,
		nullMove:       p.NullMove,
		futility:       p.Futility,
		disableKillers: p.DisableKillers,
		killerWeight:   killerWeight,
		tt:             sctx.TT,
		killers:        sctx.Killers,
		noise:          sctx.Noise,
		ponder:         sctx.Ponder,
		b:              b,
	}
	if run.tt == nil {
		run.tt = NoTranspositionTable{}
	}

	low, high := eval.NegInfScore, eval.InfScore
	if !sctx.Alpha.IsInvalid() {
		low = sctx.Alpha
	}
	if !sctx.Beta.IsInvalid() {
		high = sctx.Beta
	}

	score, moves := run.search(ctx, depth, low, high, 0, true)
	if score.IsInvalid() {
		return run.nodes, eval.InvalidScore, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runAlphaBeta struct {
	explore        Exploration
	eval           eval.Evaluator
	quiesce        QuietSearch
	nullMove       bool
	futility       bool
	disableKillers bool
	killerWeight   float64

	tt      TranspositionTable
	killers *KillerTable
	noise   eval.Random
	ponder  []board.Move

	b     *board.Board
	nodes uint64
}

// search returns the fail-soft score for the side to move at this node, and -- if a move
// improved alpha at least once -- the remaining principal variation below it.
func (m *runAlphaBeta) search(ctx context.Context, depth int, alpha, beta eval.Score, ply int, allowNull bool) (eval.Score, []board.Move) {
	m.nodes++
	if m.nodes%abortCheckInterval == 0 && contextx.IsCancelled(ctx) {
		return eval.InvalidScore, nil
	}
	if m.b.Result().Outcome == board.Draw {
		return eval.ZeroScore, nil
	}

	originalAlpha := alpha

	ttMove, ttScore, ttUsable := m.tt.Probe(m.b.Hash(), depth, alpha, beta, ply)
	if ttUsable {
		return ttScore, nil
	}

	if depth <= 0 {
		sctx := &Context{Alpha: alpha, Beta: beta, TT: m.tt, Noise: m.noise}
		nodes, score := m.quiesce.QuietSearch(ctx, sctx, m.b)
		m.nodes += nodes
		return score, nil
	}

	inCheck := m.b.Position().IsChecked(m.b.Turn())
	isPV := beta-alpha > 1

	var staticEval eval.Score
	haveStaticEval := false
	if m.eval != nil {
		wantNullMove := m.nullMove && allowNull && !inCheck && depth >= nullMoveMinDepth
		wantFutility := m.futility && !isPV && !inCheck && depth <= futilityMaxDepth
		if wantNullMove || wantFutility {
			staticEval = m.eval.Evaluate(ctx, m.b) + m.noise.Evaluate(ctx, m.b)
			haveStaticEval = true
		}
	}

	if m.nullMove && allowNull && !inCheck && depth >= nullMoveMinDepth && hasNonPawnMaterial(m.b, m.b.Turn()) {
		m.b.PushNullMove()
		score, _ := m.search(ctx, depth-1-nullMoveReduction, beta.Negate()-1, beta.Negate(), ply+1, false)
		m.b.PopNullMove()

		if score.IsInvalid() {
			return eval.InvalidScore, nil
		}
		if s := eval.IncrementMateDistance(score).Negate(); s >= beta {
			return beta, nil
		}
	}

	futile := m.futility && haveStaticEval && !isPV && !inCheck && depth <= futilityMaxDepth &&
		staticEval+futilityMargin(depth) <= alpha

	priority, selected := m.explore(ctx, m.b)
	priority = board.First(ttMove, priority)
	if m.killers != nil && !m.disableKillers {
		priority = WithWeightedKillers(m.killers, ply, priority, m.killerWeight)
	}
	if len(m.ponder) > 0 {
		want := m.ponder[0]
		selected = func(ctx context.Context, move board.Move, b *board.Board) bool { return want.Equals(move) }
		m.ponder = m.ponder[1:]
	}

	moves := board.NewMoveList(m.b.Position().PseudoLegalMoves(m.b.Turn()), priority)

	hasLegalMove := false
	first := true
	bound := UpperBound
	bestScore := eval.NegInfScore
	var bestMove board.Move
	var pv []board.Move

	for {
		move, ok := moves.Next()
		if !ok {
			break
		}
		if !m.b.PushMove(move) {
			continue
		}
		hasLegalMove = true

		quiet := !move.IsCapture() && !move.IsPromotion()
		if futile && !first && quiet && !m.b.Position().IsChecked(m.b.Turn()) {
			m.b.PopMove()
			continue
		}
		if !selected(ctx, move, m.b) {
			m.b.PopMove()
			continue
		}

		var score eval.Score
		var rem []board.Move
		if first {
			score, rem = m.search(ctx, depth-1, beta.Negate(), alpha.Negate(), ply+1, true)
		} else {
			score, rem = m.search(ctx, depth-1, alpha.Negate()-1, alpha.Negate(), ply+1, true)
			if !score.IsInvalid() {
				if s := eval.IncrementMateDistance(score).Negate(); alpha < s && s < beta {
					score, rem = m.search(ctx, depth-1, beta.Negate(), alpha.Negate(), ply+1, true)
				}
			}
		}
		m.b.PopMove()

		if score.IsInvalid() {
			return eval.InvalidScore, nil
		}
		score = eval.IncrementMateDistance(score).Negate()
		first = false

		if bestScore < score {
			bestScore = score
			bestMove = move
			pv = append([]board.Move{move}, rem...)
		}
		if alpha < score {
			alpha = score
		}
		if alpha >= beta {
			bound = LowerBound
			if quiet && m.killers != nil {
				m.killers.Record(ply, move)
			}
			break
		}
	}

	if !hasLegalMove {
		if result := m.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.NegMateScore, nil
		}
		return eval.ZeroScore, nil
	}

	if bound == UpperBound && bestScore > originalAlpha {
		bound = ExactBound
	}
	m.tt.Store(m.b.Hash(), depth, bestScore, bound, bestMove, ply)

	return bestScore, pv
}

// futilityMargin is the safety margin added to a static evaluation at a frontier node: a
// quiet move is skipped unless it could plausibly still reach alpha.
func futilityMargin(depth int) eval.Score {
	return eval.Score(150 * depth)
}

func hasNonPawnMaterial(b *board.Board, c board.Color) bool {
	pos := b.Position()
	return pos.Piece(c, board.Knight) != 0 ||
		pos.Piece(c, board.Bishop) != 0 ||
		pos.Piece(c, board.Rook) != 0 ||
		pos.Piece(c, board.Queen) != 0
}

func fullIfNotSet(p Exploration) Exploration {
	if p == nil {
		return FullExploration
	}
	return p
}
