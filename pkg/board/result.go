package board

// Outcome represents the final outcome of a game, if decided. 2 bits.
type Outcome uint8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Undecided:
		return "*"
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "?"
	}
}

// Loss returns the outcome where the given color lost the game.
func Loss(c Color) Outcome {
	if c == White {
		return BlackWins
	}
	return WhiteWins
}

// ResultReason explains why a game reached its outcome.
type ResultReason uint8

const (
	NoReason ResultReason = iota
	Checkmate
	Stalemate
	Repetition3
	Repetition5
	NoProgress
	InsufficientMaterial
)

func (r ResultReason) String() string {
	switch r {
	case NoReason:
		return ""
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Repetition3:
		return "threefold repetition"
	case Repetition5:
		return "fivefold repetition"
	case NoProgress:
		return "fifty-move rule"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "?"
	}
}

// Result represents the result of a game, if any, and why it was reached.
type Result struct {
	Outcome Outcome
	Reason  ResultReason
}

func (r Result) String() string {
	if r.Reason == NoReason {
		return r.Outcome.String()
	}
	return r.Outcome.String() + " (" + r.Reason.String() + ")"
}
