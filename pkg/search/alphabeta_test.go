package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/board/fen"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
)

func mustBoard(t *testing.T, f string) *board.Board {
	t.Helper()
	pos, turn, noprogress, fullmoves, err := fen.Decode(f)
	require.NoError(t, err)
	return board.NewBoard(board.NewZobristTable(1), pos, turn, noprogress, fullmoves)
}

func newEngine() search.AlphaBeta {
	return search.AlphaBeta{
		Eval:     eval.Material{},
		Quiesce:  search.Quiescence{Eval: eval.Material{}},
		NullMove: true,
		Futility: true,
	}
}

func newSearchContext() *search.Context {
	return &search.Context{
		Alpha:   eval.NegInfScore,
		Beta:    eval.InfScore,
		TT:      search.NewTranspositionTable(context.Background(), 1<<20),
		Killers: search.NewKillerTable(),
	}
}

func TestAlphaBetaBalancedAtStart(t *testing.T) {
	ctx := context.Background()
	b := mustBoard(t, fen.Initial)

	_, score, _, err := newEngine().Search(ctx, newSearchContext(), b, 3)
	require.NoError(t, err)
	assert.Equal(t, eval.ZeroScore, score)
}

func TestAlphaBetaFindsMateInOne(t *testing.T) {
	ctx := context.Background()
	// White to move: Re1-e8 is checkmate, the black king boxed in by its own pawns.
	b := mustBoard(t, "6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")

	_, score, pv, err := newEngine().Search(ctx, newSearchContext(), b, 3)
	require.NoError(t, err)
	require.True(t, score.IsMate())
	assert.Equal(t, 1, score.MateDistance())
	require.NotEmpty(t, pv)
	assert.Equal(t, board.E1, pv[0].From)
	assert.Equal(t, board.E8, pv[0].To)
}

func TestAlphaBetaAgreesWithMinimaxOnBalancedLine(t *testing.T) {
	ctx := context.Background()
	b := mustBoard(t, fen.Initial)

	// Plain alpha-beta (no null-move/futility pruning) must be exact: same minimax value,
	// fewer or equal nodes.
	plain := search.AlphaBeta{
		Eval:    eval.Material{},
		Quiesce: search.Quiescence{Eval: eval.Material{}},
	}
	_, pvsScore, _, err := plain.Search(ctx, newSearchContext(), b, 2)
	require.NoError(t, err)

	_, mmScore, _, err := search.Minimax{Eval: eval.Material{}}.Search(ctx, newSearchContext(), b, 2)
	require.NoError(t, err)

	assert.Equal(t, mmScore, pvsScore)
}
