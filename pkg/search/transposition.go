package search

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// TranspositionTableFactory constructs a TranspositionTable of the given size in bytes.
type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// TranspositionTable caches search results keyed by Zobrist hash. Must be thread-safe:
// concurrent workers in Lazy SMP share a single table.
type TranspositionTable interface {
	// Probe returns a usable score only when the stored depth is at least the requested
	// depth and the stored bound allows a cutoff at the given window; it always returns
	// the stored move (for ordering) when the key matches, even if the score is not
	// usable. Mate scores are re-adjusted for the given ply.
	Probe(hash board.ZobristHash, depth int, alpha, beta eval.Score, ply int) (move board.Move, score eval.Score, usable bool)
	// Store writes an entry for the position, subject to the table's replacement policy.
	// Mate scores are adjusted to be ply-independent before writing.
	Store(hash board.ZobristHash, depth int, score eval.Score, bound Bound, move board.Move, ply int)

	// NewGeneration bumps the generation counter, e.g. at the start of a new search.
	NewGeneration()

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
}

// entry is the packed 16-byte representation of a TT slot: 8 bytes of verification key
// and 8 bytes of data (score:20, move:16, depth:8, bound:2, generation:8). Score needs
// more than 16 bits: mate scores run up to Mate+1, which doesn't fit in an int16.
type entry struct {
	keyXorData atomic.Uint64
	data       atomic.Uint64
}

const (
	dataShiftScore      = 0
	dataShiftMove       = 20
	dataShiftDepth      = 36
	dataShiftBound      = 44
	dataShiftGeneration = 46

	scoreBits = 20
	scoreMask = 1<<scoreBits - 1
	signBit   = 1 << (scoreBits - 1)
)

func packData(score eval.Score, move board.Move, depth int, bound Bound, generation uint8) uint64 {
	return (uint64(int32(score))&scoreMask)<<dataShiftScore |
		uint64(packMove(move))<<dataShiftMove |
		uint64(uint8(depth))<<dataShiftDepth |
		uint64(bound)<<dataShiftBound |
		uint64(generation)<<dataShiftGeneration
}

func unpackData(data uint64) (score eval.Score, move board.Move, depth int, bound Bound, generation uint8) {
	raw := int32(data >> dataShiftScore & scoreMask)
	if raw&signBit != 0 {
		raw -= 1 << scoreBits
	}
	score = eval.Score(raw)
	move = unpackMove(uint16(data >> dataShiftMove))
	depth = int(uint8(data >> dataShiftDepth))
	bound = Bound(uint8(data>>dataShiftBound) & 0x3)
	generation = uint8(data >> dataShiftGeneration)
	return
}

// packMove compactly encodes a move as from:6|to:6|promotion:3 bits.
func packMove(m board.Move) uint16 {
	return uint16(m.From) | uint16(m.To)<<6 | uint16(m.Promotion)<<12
}

func unpackMove(v uint16) board.Move {
	if v == 0 {
		return board.Move{}
	}
	return board.Move{
		From:      board.Square(v & 0x3f),
		To:        board.Square((v >> 6) & 0x3f),
		Promotion: board.Piece((v >> 12) & 0x7),
	}
}

// table is a fixed-capacity, open-addressed transposition table using the xor-trick for
// lock-free concurrent access: key and data are stored as separate words, the key word
// holding `key ^ data` so a torn read (mismatched key/data pair) is detected and treated
// as a miss rather than trusted.
type table struct {
	entries    []entry
	mask       uint64
	used       atomic.Uint64
	generation atomic.Uint32
}

// NewTranspositionTable allocates a table of size bytes, rounded down to a power of two
// number of 16-byte entries.
func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	n := uint64(1 << (63 - 4 - bits.LeadingZeros64(size|1)))
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", size>>20, n)

	return &table{
		entries: make([]entry, n),
		mask:    n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.entries)) << 4
}

func (t *table) Used() float64 {
	return float64(t.used.Load()) / float64(len(t.entries))
}

func (t *table) NewGeneration() {
	t.generation.Inc()
}

func (t *table) Probe(hash board.ZobristHash, depth int, alpha, beta eval.Score, ply int) (board.Move, eval.Score, bool) {
	e := &t.entries[uint64(hash)&t.mask]

	keyXorData := e.keyXorData.Load()
	data := e.data.Load()
	key := keyXorData ^ data
	if key != uint64(hash) {
		return board.Move{}, 0, false // miss or torn read
	}

	score, move, storedDepth, bound, _ := unpackData(data)
	score = score.AdjustMateScoreForLoad(ply)

	if storedDepth < depth {
		return move, 0, false // not deep enough to cut, but move is still useful for ordering
	}

	switch {
	case bound == ExactBound:
		return move, score, true
	case bound == LowerBound && score >= beta:
		return move, score, true
	case bound == UpperBound && score <= alpha:
		return move, score, true
	default:
		return move, 0, false
	}
}

func (t *table) Store(hash board.ZobristHash, depth int, score eval.Score, bound Bound, move board.Move, ply int) {
	e := &t.entries[uint64(hash)&t.mask]

	generation := uint8(t.generation.Load())
	store := score.AdjustMateScoreForStore(ply)

	old := e.data.Load()
	if old != 0 {
		_, _, oldDepth, _, oldGeneration := unpackData(old)
		if oldDepth > depth && oldGeneration == generation {
			return // keep: deeper entry from the current search generation
		}
	} else {
		t.used.Inc()
	}

	data := packData(store, move, depth, bound, generation)
	e.data.Store(data)
	e.keyXorData.Store(uint64(hash) ^ data)
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a Nop implementation, useful for benchmarking without a TT.
type NoTranspositionTable struct{}

func (n NoTranspositionTable) Probe(hash board.ZobristHash, depth int, alpha, beta eval.Score, ply int) (board.Move, eval.Score, bool) {
	return board.Move{}, 0, false
}

func (n NoTranspositionTable) Store(hash board.ZobristHash, depth int, score eval.Score, bound Bound, move board.Move, ply int) {
}

func (n NoTranspositionTable) NewGeneration() {}

func (n NoTranspositionTable) Size() uint64 {
	return 0
}

func (n NoTranspositionTable) Used() float64 {
	return 0
}
