package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
)

func TestTranspositionTableSize(t *testing.T) {
	ctx := context.Background()

	tt := search.NewTranspositionTable(ctx, 0x1000)
	assert.Equal(t, uint64(0x1000), tt.Size())

	tt2 := search.NewTranspositionTable(ctx, 0x1f00)
	assert.Equal(t, uint64(0x1000), tt2.Size())
}

func TestTranspositionTableProbeStore(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	a := board.ZobristHash(rand.Uint64())

	_, _, ok := tt.Probe(a, 2, eval.NegInfScore, eval.InfScore, 0)
	assert.False(t, ok)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	tt.Store(a, 5, eval.Score(25), search.ExactBound, m, 0)

	move, score, ok := tt.Probe(a, 2, eval.NegInfScore, eval.InfScore, 0)
	assert.True(t, ok)
	assert.Equal(t, eval.Score(25), score)
	assert.Equal(t, m, move)

	_, _, ok = tt.Probe(a^0xff0000, 2, eval.NegInfScore, eval.InfScore, 0)
	assert.False(t, ok)
}

func TestTranspositionTableBoundCutoffs(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.G4, To: board.G8}

	tt.Store(a, 4, eval.Score(50), search.LowerBound, m, 0)
	_, score, ok := tt.Probe(a, 4, eval.Score(0), eval.Score(40), 0)
	assert.True(t, ok) // score >= beta
	assert.Equal(t, eval.Score(50), score)

	_, _, ok = tt.Probe(a, 4, eval.Score(0), eval.Score(60), 0)
	assert.False(t, ok) // can't cut: score < beta

	tt.Store(a, 4, eval.Score(-50), search.UpperBound, m, 0)
	_, score, ok = tt.Probe(a, 4, eval.Score(-40), eval.Score(0), 0)
	assert.True(t, ok) // score <= alpha
	assert.Equal(t, eval.Score(-50), score)

	_, _, ok = tt.Probe(a, 4, eval.Score(-60), eval.Score(0), 0)
	assert.False(t, ok) // can't cut: score > alpha
}

func TestTranspositionTableReplacement(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	a := board.ZobristHash(rand.Uint64())
	deep := board.Move{From: board.G4, To: board.G8}
	shallow := board.Move{From: board.G8, To: board.G4}

	tt.Store(a, 4, eval.Score(5), search.ExactBound, deep, 0)

	// Shallower entry from the same generation must not replace a deeper one.
	tt.Store(a, 2, eval.Score(9), search.ExactBound, shallow, 0)
	move, score, ok := tt.Probe(a, 2, eval.NegInfScore, eval.InfScore, 0)
	assert.True(t, ok)
	assert.Equal(t, eval.Score(5), score)
	assert.Equal(t, deep, move)

	// An entry at least as deep does replace.
	tt.Store(a, 6, eval.Score(9), search.ExactBound, shallow, 0)
	move, score, ok = tt.Probe(a, 2, eval.NegInfScore, eval.InfScore, 0)
	assert.True(t, ok)
	assert.Equal(t, eval.Score(9), score)
	assert.Equal(t, shallow, move)
}

func TestTranspositionTableMateScoreAdjustment(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.G4, To: board.G8}

	// A mate score stored from 3 plies below the root has the ply added on store and
	// subtracted again on load, so probing from the same ply returns it unchanged.
	foundAtPly := 3
	score := eval.Mate - 1
	tt.Store(a, 2, score, search.ExactBound, m, foundAtPly)

	_, probed, ok := tt.Probe(a, 2, eval.NegInfScore, eval.InfScore, foundAtPly)
	assert.True(t, ok)
	assert.Equal(t, score, probed)
}

func TestNoTranspositionTableAlwaysMisses(t *testing.T) {
	var tt search.NoTranspositionTable
	_, _, ok := tt.Probe(0, 10, eval.NegInfScore, eval.InfScore, 0)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), tt.Size())
}
