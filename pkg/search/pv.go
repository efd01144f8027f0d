package search

import (
	"fmt"
	"time"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// PV represents the principal variation found by a completed search iteration.
type PV struct {
	Depth int
	Moves []board.Move
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Hash  float64 // TT utilization [0;1], if available
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v",
		p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), board.PrintMoves(p.Moves))
}
