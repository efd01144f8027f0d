package searchctl

import (
	"context"
	"sync"

	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
)

// lazySMPNoiseLimit is the evaluation noise, in centipawns, given to helper workers so
// their move ordering diverges from the main worker and from each other.
const lazySMPNoiseLimit = 8

// LazySMP runs several Iterative workers concurrently against a single shared
// transposition table, each searching the same position with a differently perturbed
// evaluator so they tend to explore different parts of the tree; a helper worker's
// results feed into the shared TT and so can speed up every other worker's search. With
// Workers == 1, it behaves identically to a single Iterative search (the noise for worker
// 0 is always whatever the caller passed in), preserving single-threaded determinism.
//
// See: https://www.chessprogramming.org/Lazy_SMP.
type LazySMP struct {
	Root    search.Search
	Workers int

	// NoAspiration disables aspiration windows in every worker.
	NoAspiration bool
}

func (l *LazySMP) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV) {
	n := l.Workers
	if n <= 0 {
		n = 1
	}

	out := make(chan search.PV, 1)
	h := &lazySMPHandle{init: iox.NewAsyncCloser()}

	workers := make([]Handle, n)
	results := make([]search.PV, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		workerNoise := noise
		if i > 0 {
			workerNoise = eval.NewRandom(lazySMPNoiseLimit, int64(i))
		}

		worker := &Iterative{Root: l.Root, NoAspiration: l.NoAspiration}
		wh, wout := worker.Launch(ctx, b.Fork(), tt, workerNoise, opt)
		workers[i] = wh

		wg.Add(1)
		go func(idx int, wout <-chan search.PV) {
			defer wg.Done()
			for pv := range wout {
				results[idx] = pv
				if idx == 0 {
					h.init.Close()
					select {
					case <-out:
					default:
					}
					out <- pv
				}
			}
		}(i, wout)
	}

	h.workers = workers
	h.results = results
	h.done = make(chan struct{})
	go func() {
		wg.Wait()
		close(out)
		close(h.done)
	}()

	return h, out
}

type lazySMPHandle struct {
	init iox.AsyncCloser

	workers []Handle
	results []search.PV
	done    chan struct{}

	mu     sync.Mutex
	halted bool
	best   search.PV
}

// Halt stops every worker and returns the principal variation of whichever worker reached
// the greatest depth, ties broken by score (always from the searching side's perspective,
// so higher is simply better regardless of color).
func (h *lazySMPHandle) Halt() search.PV {
	<-h.init.Closed()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.halted {
		return h.best
	}
	h.halted = true

	for _, w := range h.workers {
		w.Halt()
	}
	<-h.done

	best := h.results[0]
	for _, pv := range h.results[1:] {
		if pv.Depth > best.Depth || (pv.Depth == best.Depth && pv.Score > best.Score) {
			best = pv
		}
	}
	h.best = best
	return best
}
