package search

import (
	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// KillerTable records, per ply, up to two quiet moves that caused a beta cutoff. Quiets
// that repeat a recent cutoff are tried early even without a capture or TT hit. Not
// shared across searches: killers are specific to one search's move ordering, not a
// property of the position.
type KillerTable struct {
	killers [eval.MaxPly][2]board.Move
}

// NewKillerTable returns an empty killer table.
func NewKillerTable() *KillerTable {
	return &KillerTable{}
}

// Record stores a quiet move as the newest killer at the given ply, evicting the older
// of the two slots. A move already present in slot 0 is left untouched.
func (k *KillerTable) Record(ply int, m board.Move) {
	if ply < 0 || ply >= len(k.killers) {
		return
	}
	if k.killers[ply][0].Equals(m) {
		return
	}
	k.killers[ply][1] = k.killers[ply][0]
	k.killers[ply][0] = m
}

// Priority returns the killer-ordering bonus for a move at a given ply: killer slot 0
// beats slot 1, and both beat a non-killer quiet.
func (k *KillerTable) Priority(ply int, m board.Move) board.MovePriority {
	if k == nil || ply < 0 || ply >= len(k.killers) {
		return 0
	}
	switch {
	case k.killers[ply][0].Equals(m):
		return 2
	case k.killers[ply][1].Equals(m):
		return 1
	default:
		return 0
	}
}
