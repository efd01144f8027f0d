package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/board/fen"
	"github.com/sporkfish/sporkfish-go/pkg/engine"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
	"github.com/sporkfish/sporkfish-go/pkg/search/searchctl"
)

func newTestEngine(ctx context.Context) *engine.Engine {
	s := search.AlphaBeta{
		Eval:     eval.PeSTO{},
		Quiesce:  search.Quiescence{Eval: eval.PeSTO{}},
		NullMove: true,
		Futility: true,
	}
	return engine.New(ctx, "test", "test", s,
		engine.WithTable(search.NewTranspositionTable),
		engine.WithOptions(engine.Options{Hash: 4}))
}

// analyze runs a depth-limited search to completion and returns the final principal variation.
func analyze(t *testing.T, e *engine.Engine, depth uint) search.PV {
	t.Helper()
	ctx := context.Background()

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(depth)})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	return last
}

func TestMateInOne(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)
	require.NoError(t, e.Reset(ctx, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"))

	pv := analyze(t, e, 3)
	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, "A1A8", pv.Moves[0].String())
	assert.GreaterOrEqual(t, int(pv.Score), int(eval.MateThreshold))
}

// TestScholarsMateAdjudicatedAsCheckmate exercises the classic scholar's-mate final
// position: black to move, queen-delivered check on f7 defended by the c4 bishop, no
// blocking or capturing resource and no legal king move. The engine must adjudicate this
// as checkmate rather than searching into it.
func TestScholarsMateAdjudicatedAsCheckmate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)
	require.NoError(t, e.Reset(ctx, "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4"))

	pv := analyze(t, e, 4)
	assert.Empty(t, pv.Moves)
	assert.LessOrEqual(t, int(pv.Score), int(-eval.MateThreshold))
}

func TestStalemateAvoidance(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)
	require.NoError(t, e.Reset(ctx, "7k/5Q2/6K1/8/8/8/8/8 w - - 0 1"))

	pv := analyze(t, e, 4)
	require.NotEmpty(t, pv.Moves)
	assert.NotEqual(t, "F7G7", pv.Moves[0].String())
	assert.True(t, pv.Score.IsMate())
	assert.Greater(t, int(pv.Score), 0)
}

func TestOpeningMoveFromStart(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)
	require.NoError(t, e.Reset(ctx, fen.Initial))

	pv := analyze(t, e, 4)
	require.NotEmpty(t, pv.Moves)
	assert.Greater(t, pv.Nodes, uint64(1000))
}

func TestDrawByInsufficientMaterial(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	const f = "8/8/4k3/8/8/4K3/8/8 w - - 0 1"
	require.NoError(t, e.Reset(ctx, f))

	pos, turn, _, _, err := fen.Decode(f)
	require.NoError(t, err)
	assert.True(t, pos.HasInsufficientMaterial())

	pv := analyze(t, e, 2)
	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, eval.ZeroScore, pv.Score)
	assert.Equal(t, board.King, pv.Moves[0].Piece)
	require.True(t, turn == board.White)
}

// Zugzwang (the null-move pruning pitfall) is covered at the search layer, in
// search.TestNullMoveAgreesWithPlainSearchInZugzwang -- it needs access to AlphaBeta with
// NullMove toggled on and off, which the engine layer does not expose.
