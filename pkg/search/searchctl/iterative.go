package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
)

// aspirationWindow is the initial +/- centipawn half-width around the previous
// iteration's score. It doubles on each failed probe, up to aspirationMaxWidenings
// times, before falling back to a full-width search.
const aspirationWindow = 25

const aspirationMaxWidenings = 2

// aspirationMinDepth is the shallowest depth at which a narrowed window is attempted; a
// depth-1 search has no prior score to center it on.
const aspirationMinDepth = 2

// Iterative is a search harness for iterative deepening search with aspiration windows.
type Iterative struct {
	Root search.Search

	// NoAspiration disables aspiration windows, searching every iteration with a full
	// (-Inf,+Inf) window. Off (aspiration enabled) by default.
	NoAspiration bool
}

func (i *Iterative) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, b, tt, noise, i.NoAspiration, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, b *board.Board, tt search.TranspositionTable, noise eval.Random, noAspiration bool, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	if tt != nil {
		tt.NewGeneration()
	}

	sctx := &search.Context{TT: tt, Killers: search.NewKillerTable(), Noise: noise}
	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, b.Turn())

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	depth := 1
	prevScore := eval.ZeroScore
	havePrevScore := false
	completedAny := false

	for !h.quit.IsClosed() {
		start := time.Now()

		nodes, score, moves, err := searchWithAspiration(wctx, root, sctx, b, depth, prevScore, havePrevScore && !noAspiration)
		if err != nil {
			if err == search.ErrHalted {
				if !completedAny {
					h.fallBackToStaticEval(ctx, root, b, out)
				}
				return // Halt was called.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", b, depth, err)
			return
		}
		completedAny = true

		pv := search.PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}
		if tt != nil {
			pv.Hash = tt.Used()
		}

		logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		prevScore, havePrevScore = score, true

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if score.IsMate() && score.MateDistance() <= depth {
			return // halt: forced mate found within full width search. Exact result.
		}
		if useSoft && soft < time.Since(start) {
			return // halt: exceeded soft time limit. Do not start new search.
		}
		depth++
	}
}

// fallBackToStaticEval picks the highest-ranked legal root move by static evaluation alone
// (no search) and sends it as the final PV. Used when the deadline passes before the first
// iteration ever completes, per the TimeExhausted safety fallback.
func (h *handle) fallBackToStaticEval(ctx context.Context, root search.Search, b *board.Board, out chan search.PV) {
	ev := rootEvaluator(root)
	if ev == nil {
		logw.Warnf(ctx, "Time exhausted before first iteration completed on %v; no static evaluator available for fallback", b.Position())
		return
	}

	var best board.Move
	bestScore := eval.NegInfScore
	found := false

	for _, m := range b.Position().PseudoLegalMoves(b.Turn()) {
		if !b.PushMove(m) {
			continue
		}
		score := ev.Evaluate(ctx, b).Negate()
		b.PopMove()

		if !found || score > bestScore {
			best, bestScore, found = m, score, true
		}
	}
	if !found {
		logw.Warnf(ctx, "Time exhausted before first iteration completed on %v; no legal move to fall back to", b.Position())
		return
	}

	logw.Warnf(ctx, "Time exhausted before first iteration completed on %v; falling back to static evaluator best move %v", b.Position(), best)

	pv := search.PV{Moves: []board.Move{best}, Score: bestScore}
	h.mu.Lock()
	h.pv = pv
	h.mu.Unlock()

	select {
	case <-out:
	default:
	}
	out <- pv
}

// rootEvaluator extracts the eval.Evaluator driving root, if root is a recognized
// implementation; nil if none can be determined.
func rootEvaluator(root search.Search) eval.Evaluator {
	if ab, ok := root.(search.AlphaBeta); ok {
		return ab.Eval
	}
	return nil
}

// searchWithAspiration searches depth with a window centered on prevScore, widening up to
// aspirationMaxWidenings times on a fail-high or fail-low before retrying full-width.
func searchWithAspiration(ctx context.Context, root search.Search, sctx *search.Context, b *board.Board, depth int, prevScore eval.Score, havePrevScore bool) (uint64, eval.Score, []board.Move, error) {
	if depth < aspirationMinDepth || !havePrevScore {
		sctx.Alpha, sctx.Beta = eval.NegInfScore, eval.InfScore
		return root.Search(ctx, sctx, b, depth)
	}

	window := eval.Score(aspirationWindow)
	var totalNodes uint64

	for widenings := 0; widenings <= aspirationMaxWidenings; widenings++ {
		sctx.Alpha = prevScore - window
		sctx.Beta = prevScore + window

		nodes, score, moves, err := root.Search(ctx, sctx, b, depth)
		totalNodes += nodes
		if err != nil {
			return totalNodes, score, moves, err
		}
		if score > sctx.Alpha && score < sctx.Beta {
			return totalNodes, score, moves, nil
		}
		window *= 2 // fail-high or fail-low: widen and retry
	}

	sctx.Alpha, sctx.Beta = eval.NegInfScore, eval.InfScore
	nodes, score, moves, err := root.Search(ctx, sctx, b, depth)
	totalNodes += nodes
	return totalNodes, score, moves, err
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
