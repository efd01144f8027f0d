// Package search contains search functionality and utilities.
package search

import (
	"context"
	"errors"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// Context carries per-search state threaded through every node: the alpha-beta window,
// the shared transposition table, killer moves, an optional noise evaluator and an
// optional ponder line to explore first. A Context is owned by a single search call and
// is not safe to share across concurrent searches, except for the TT.
type Context struct {
	Alpha, Beta eval.Score
	TT          TranspositionTable
	Killers     *KillerTable
	Noise       eval.Random
	Ponder      []board.Move
}

// Search implements search of the game tree to a given depth. Thread-safe: a new Context
// and forked Board must be used per concurrent invocation.
type Search interface {
	Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error)
}

// QuietSearch implements search of "noisy" continuations at the search horizon, e.g.
// quiescence search over captures and checks.
type QuietSearch interface {
	QuietSearch(ctx context.Context, sctx *Context, b *board.Board) (uint64, eval.Score)
}
