package eval

import (
	"fmt"
	"math"
)

// MaxPly bounds search recursion and the size of per-ply arrays (killers, PV, eval cache).
const MaxPly = 128

// Score is a signed position or move score in centipawns, from the side-to-move's perspective.
// Mate scores are encoded near +/-Mate: a score s with |s| >= MateThreshold represents
// mate-in-(Mate-|s|) plies, winning mates positive and losing mates negative.
type Score int32

const (
	Mate          Score = 100_000
	MateThreshold Score = Mate - MaxPly
	Inf           Score = Mate + 1

	Draw Score = 0
)

// InvalidScore is returned by evaluators/searches that could not produce a score, e.g. when
// halted before any move completed.
const InvalidScore Score = math.MinInt32

var (
	NegInfScore   = -Inf
	InfScore      = Inf
	ZeroScore     = Draw
	NegMateScore  = -Mate
	MateScore     = Mate
)

func (s Score) String() string {
	if s.IsMate() {
		return fmt.Sprintf("mate %v", s.MateDistance())
	}
	return fmt.Sprintf("cp %v", int32(s))
}

// Negate flips the score to the opponent's perspective. InvalidScore (math.MinInt32) has no
// positive counterpart and is returned unchanged.
func (s Score) Negate() Score {
	if s == InvalidScore {
		return s
	}
	return -s
}

// Less orders scores from worst to best, tolerating invalid/sentinel values.
func (s Score) Less(o Score) bool {
	return s < o
}

// IsInvalid returns true iff the score was never set, e.g. a halted search.
func (s Score) IsInvalid() bool {
	return s == InvalidScore
}

// IsMate returns true iff the score encodes a forced mate within MaxPly.
func (s Score) IsMate() bool {
	return !s.IsInvalid() && (s >= MateThreshold || s <= -MateThreshold)
}

// IsHeuristic returns true iff the score is an ordinary (non-mate) evaluation.
func (s Score) IsHeuristic() bool {
	return !s.IsInvalid() && !s.IsMate()
}

// MateDistance returns the signed number of moves (not plies) to deliver or receive mate.
// Positive favors the side the score is relative to; only meaningful when IsMate() is true.
func (s Score) MateDistance() int {
	if s > 0 {
		return int(Mate-s+1) / 2
	}
	return -int(Mate+s+1) / 2
}

// IncrementMateDistance adjusts a mate score by one ply, as happens when a score is propagated
// up one level of recursion (the mating side is one ply further away from the root).
func IncrementMateDistance(s Score) Score {
	switch {
	case s >= MateThreshold:
		return s - 1
	case s <= -MateThreshold:
		return s + 1
	default:
		return s
	}
}

// AdjustMateScoreForStore converts a mate score measured from the root into one measured from
// the current search node (ply plies below the root), so it can be cached in the TT
// independent of the path that reaches this position. Non-mate scores are unaffected.
func (s Score) AdjustMateScoreForStore(ply int) Score {
	switch {
	case s >= MateThreshold:
		return s + Score(ply)
	case s <= -MateThreshold:
		return s - Score(ply)
	default:
		return s
	}
}

// AdjustMateScoreForLoad is the inverse of AdjustMateScoreForStore: it converts a node-relative
// mate score read from the TT back into one relative to the root.
func (s Score) AdjustMateScoreForLoad(ply int) Score {
	switch {
	case s >= MateThreshold:
		return s - Score(ply)
	case s <= -MateThreshold:
		return s + Score(ply)
	default:
		return s
	}
}

// Crop clamps a score into [-Inf, Inf].
func Crop(s Score) Score {
	switch {
	case s > Inf:
		return Inf
	case s < -Inf:
		return -Inf
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
