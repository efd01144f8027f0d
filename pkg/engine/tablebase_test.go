package engine_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sporkfish/sporkfish-go/pkg/board/fen"
	"github.com/sporkfish/sporkfish-go/pkg/engine"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
	"github.com/sporkfish/sporkfish-go/pkg/search/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
)

func TestNoTablebaseNeverHasCoverage(t *testing.T) {
	outcome, dtz, ok := engine.NoTablebase.Probe(context.Background(), fen.Initial)
	assert.False(t, ok)
	assert.Equal(t, engine.TablebaseUnknown, outcome)
	assert.Equal(t, 0, dtz)
}

// spyTablebase always reports a hit and counts how often it was consulted.
type spyTablebase struct {
	calls *atomic.Int32
}

func (s spyTablebase) Probe(ctx context.Context, fen string) (engine.TablebaseOutcome, int, bool) {
	s.calls.Add(1)
	return engine.TablebaseDraw, 0, true
}

func TestAnalyzeConsultsConfiguredTablebase(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	s := search.AlphaBeta{Eval: eval.Material{}, Quiesce: search.Quiescence{Eval: eval.Material{}}}
	e := engine.New(ctx, "test", "test", s, engine.WithTablebase(spyTablebase{calls: &calls}))

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(1))})
	require.NoError(t, err)
	for range out {
		// drain until the search completes.
	}

	assert.Equal(t, int32(1), calls.Load())
}
