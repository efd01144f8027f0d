package board

import "fmt"

// MoveType indicates the type of move. The no-progress counter is reset with any non-Normal move.
type MoveType uint8

const (
	Normal    MoveType = iota
	Push               // Pawn move
	Jump               // Pawn 2-square move
	EnPassant          // Implicitly a pawn capture
	QueenSideCastle
	KingSideCastle
	Capture
	Promotion
	CapturePromotion
)

func (t MoveType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Push:
		return "push"
	case Jump:
		return "jump"
	case EnPassant:
		return "enpassant"
	case QueenSideCastle:
		return "O-O-O"
	case KingSideCastle:
		return "O-O"
	case Capture:
		return "capture"
	case Promotion:
		return "promotion"
	case CapturePromotion:
		return "capturepromotion"
	default:
		return "?"
	}
}

// Move represents a not-necessarily legal move along with contextual metadata.
type Move struct {
	Type      MoveType
	Piece     Piece // piece moved
	From, To  Square
	Promotion Piece // desired piece for promotion, if any.
	Capture   Piece // captured piece, if any.
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "a2a4" or "a7a8q".
// The parsed move does not contain contextual information like piece, castling or en passant;
// callers resolve the full move by matching From/To/Promotion against a pseudo-legal move list.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}

	return Move{From: from, To: to}, nil
}

// Equals compares two moves by their externally-visible coordinates. It ignores contextual
// metadata (Piece, Capture) that is implied by the board a move is played against.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// IsCapture returns true iff the move captures a piece, including en passant.
func (m Move) IsCapture() bool {
	return m.Type == Capture || m.Type == CapturePromotion || m.Type == EnPassant
}

// IsPromotion returns true iff the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Type == Promotion || m.Type == CapturePromotion
}

// EnPassantCapture returns the square of the pawn captured by an en passant move.
func (m Move) EnPassantCapture() (Square, bool) {
	if m.Type != EnPassant {
		return ZeroSquare, false
	}
	switch m.To.Rank() {
	case Rank6:
		return NewSquare(m.To.File(), Rank5), true
	case Rank3:
		return NewSquare(m.To.File(), Rank4), true
	default:
		return ZeroSquare, false
	}
}

// EnPassantTarget returns the en passant target square created by a pawn Jump.
func (m Move) EnPassantTarget() (Square, bool) {
	if m.Type != Jump {
		return ZeroSquare, false
	}
	switch m.To.Rank() {
	case Rank4:
		return NewSquare(m.To.File(), Rank3), true
	case Rank5:
		return NewSquare(m.To.File(), Rank6), true
	default:
		return ZeroSquare, false
	}
}

// CastlingRookMove returns the rook's From/To squares for a castling move.
func (m Move) CastlingRookMove() (from, to Square, ok bool) {
	switch m.Type {
	case KingSideCastle:
		if m.From == E1 {
			return H1, F1, true
		}
		return H8, F8, true
	case QueenSideCastle:
		if m.From == E1 {
			return A1, D1, true
		}
		return A8, D8, true
	default:
		return ZeroSquare, ZeroSquare, false
	}
}

// CastlingRightsLost returns the mask of castling rights unaffected by this move. AND it with
// the position's current rights to obtain the rights after the move is played.
func (m Move) CastlingRightsLost() Castling {
	var lost Castling

	switch m.Piece {
	case King:
		switch m.From {
		case E1:
			lost |= WhiteKingSideCastle | WhiteQueenSideCastle
		case E8:
			lost |= BlackKingSideCastle | BlackQueenSideCastle
		}
	case Rook:
		switch m.From {
		case A1:
			lost |= WhiteQueenSideCastle
		case H1:
			lost |= WhiteKingSideCastle
		case A8:
			lost |= BlackQueenSideCastle
		case H8:
			lost |= BlackKingSideCastle
		}
	}

	if m.IsCapture() {
		switch m.To {
		case A1:
			lost |= WhiteQueenSideCastle
		case H1:
			lost |= WhiteKingSideCastle
		case A8:
			lost |= BlackQueenSideCastle
		case H8:
			lost |= BlackKingSideCastle
		}
	}

	return FullCastingRights &^ lost
}

// String formats the move in pure coordinate notation with uppercase squares, e.g. "E2E4",
// followed by the promotion piece, if any. The UCI driver prints moves in lowercase instead.
func (m Move) String() string {
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}
