package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// Exploration determines, for a node, both the order in which moves are tried and
// whether a given move is explored beyond the first ply. Limited exploration is required
// by quiescence search and can double as a forward-pruning hook for full search.
type Exploration func(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection)

// FullExploration searches every move, ordered by MVV-LVA. Default for full search.
func FullExploration(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection) {
	return MVVLVA, IsAnyMove
}

// QuiescentExploration searches only quick-gain moves (captures, queen promotions),
// ordered by MVV-LVA. Default for quiescence search.
func QuiescentExploration(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection) {
	return MVVLVA, IsQuickGain
}

// MVVLVA implements the MVV-LVA move priority: `1000*victim_value - attacker_value` for
// captures (promotions treated as a capture of the gained value), zero otherwise.
func MVVLVA(m board.Move) board.MovePriority {
	if gain := eval.NominalValueGain(m); gain > 0 {
		return board.MovePriority(1000*gain - eval.NominalValue(m.Piece))
	}
	return 0
}

// WeightedMVVLVA scales MVVLVA by weight, for tuning its influence relative to other
// ordering signals.
func WeightedMVVLVA(weight float64) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		return board.MovePriority(float64(MVVLVA(m)) * weight)
	}
}

// WithKillers adds a killer-move bonus on top of a base priority for quiet moves, so
// that recent cutoff moves are tried ahead of other quiets without disturbing capture
// ordering (MVV-LVA priorities are always kept above the killer bonus range).
func WithKillers(k *KillerTable, ply int, base board.MovePriorityFn) board.MovePriorityFn {
	return WithWeightedKillers(k, ply, base, 1)
}

// WithWeightedKillers is WithKillers with a tunable killer-bonus weight.
func WithWeightedKillers(k *KillerTable, ply int, base board.MovePriorityFn, weight float64) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		if p := base(m); p != 0 {
			return p
		}
		return board.MovePriority(float64(k.Priority(ply, m)) * weight)
	}
}

// MoveOrder selects the move-ordering scheme used at full-search nodes.
type MoveOrder int

const (
	// CompositeOrder orders by MVV-LVA, falling back to the killer-move bonus for quiets.
	// Default.
	CompositeOrder MoveOrder = iota
	// MVVLVAOrder orders strictly by MVV-LVA; killer moves are not consulted.
	MVVLVAOrder
	// KillerOrder orders quiets by the killer-move bonus only; captures and promotions are
	// otherwise unordered relative to each other.
	KillerOrder
)

func (o MoveOrder) String() string {
	switch o {
	case MVVLVAOrder:
		return "MVV_LVA"
	case KillerOrder:
		return "KILLER"
	default:
		return "COMPOSITE"
	}
}

// ParseMoveOrder parses the recognized move_order config values (MVV_LVA, KILLER,
// COMPOSITE), case-insensitive.
func ParseMoveOrder(s string) (MoveOrder, error) {
	switch strings.ToUpper(s) {
	case "MVV_LVA":
		return MVVLVAOrder, nil
	case "KILLER":
		return KillerOrder, nil
	case "COMPOSITE":
		return CompositeOrder, nil
	default:
		return 0, fmt.Errorf("unknown move_order: %v", s)
	}
}

// BuildExploration returns the full-search Exploration for the given move order and
// MVV-LVA weight, and whether the killer table should be consulted at all (false for
// MVVLVAOrder, which is defined to ignore killers entirely).
func BuildExploration(order MoveOrder, mvvLVAWeight float64) (Exploration, bool) {
	switch order {
	case MVVLVAOrder:
		weighted := WeightedMVVLVA(mvvLVAWeight)
		return func(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection) {
			return weighted, IsAnyMove
		}, false
	case KillerOrder:
		zero := func(board.Move) board.MovePriority { return 0 }
		return func(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection) {
			return zero, IsAnyMove
		}, true
	default:
		weighted := WeightedMVVLVA(mvvLVAWeight)
		return func(ctx context.Context, b *board.Board) (board.MovePriorityFn, Selection) {
			return weighted, IsAnyMove
		}, true
	}
}
