package board_test

import (
	"testing"

	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPseudoLegalMovesPawns(t *testing.T) {
	tests := []struct {
		name      string
		turn      board.Color
		pieces    []board.Placement
		enpassant board.Square
		expected  []board.Move
	}{
		{
			"kings only",
			board.White,
			[]board.Placement{
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.ZeroSquare,
			[]board.Move{
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B1},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B2},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.A2},
			},
		},
		{
			"unobstructed push and jump",
			board.White,
			[]board.Placement{
				{Square: board.E2, Color: board.White, Piece: board.Pawn},
				{Square: board.G5, Color: board.White, Piece: board.Pawn},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.ZeroSquare,
			[]board.Move{
				{Type: board.Push, Piece: board.Pawn, From: board.E2, To: board.E3},
				{Type: board.Jump, Piece: board.Pawn, From: board.E2, To: board.E4},
				{Type: board.Push, Piece: board.Pawn, From: board.G5, To: board.G6},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B1},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B2},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.A2},
			},
		},
		{
			"black pawns, ascending square order",
			board.Black,
			[]board.Placement{
				{Square: board.C7, Color: board.Black, Piece: board.Pawn},
				{Square: board.G6, Color: board.Black, Piece: board.Pawn},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.ZeroSquare,
			[]board.Move{
				{Type: board.Push, Piece: board.Pawn, From: board.G6, To: board.G5},
				{Type: board.Push, Piece: board.Pawn, From: board.C7, To: board.C6},
				{Type: board.Jump, Piece: board.Pawn, From: board.C7, To: board.C5},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.H7},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.G7},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.G8},
			},
		},
		{
			"capture before push, jump blocked",
			board.White,
			[]board.Placement{
				{Square: board.E2, Color: board.White, Piece: board.Pawn},
				{Square: board.E4, Color: board.Black, Piece: board.Bishop},
				{Square: board.D3, Color: board.Black, Piece: board.Knight},
				{Square: board.D4, Color: board.Black, Piece: board.Rook},
				{Square: board.H5, Color: board.White, Piece: board.Pawn},
				{Square: board.G6, Color: board.Black, Piece: board.Bishop},
				{Square: board.H6, Color: board.Black, Piece: board.Knight},
				{Square: board.A6, Color: board.Black, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.ZeroSquare,
			[]board.Move{
				{Type: board.Capture, Piece: board.Pawn, From: board.E2, To: board.D3, Capture: board.Knight},
				{Type: board.Push, Piece: board.Pawn, From: board.E2, To: board.E3},
				{Type: board.Capture, Piece: board.Pawn, From: board.H5, To: board.G6, Capture: board.Bishop},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B1},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B2},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.A2},
			},
		},
		{
			"push promotion, Q R N B order",
			board.White,
			[]board.Placement{
				{Square: board.D7, Color: board.White, Piece: board.Pawn},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.ZeroSquare,
			[]board.Move{
				{Type: board.Promotion, Piece: board.Pawn, From: board.D7, To: board.D8, Promotion: board.Queen},
				{Type: board.Promotion, Piece: board.Pawn, From: board.D7, To: board.D8, Promotion: board.Rook},
				{Type: board.Promotion, Piece: board.Pawn, From: board.D7, To: board.D8, Promotion: board.Knight},
				{Type: board.Promotion, Piece: board.Pawn, From: board.D7, To: board.D8, Promotion: board.Bishop},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B1},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.B2},
				{Type: board.Normal, Piece: board.King, From: board.A1, To: board.A2},
			},
		},
		{
			"en passant appended after push",
			board.Black,
			[]board.Placement{
				{Square: board.C4, Color: board.Black, Piece: board.Pawn},
				{Square: board.D4, Color: board.White, Piece: board.Pawn},
				{Square: board.E4, Color: board.Black, Piece: board.Pawn},
				{Square: board.F4, Color: board.Black, Piece: board.Pawn},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			board.D3,
			[]board.Move{
				{Type: board.Push, Piece: board.Pawn, From: board.F4, To: board.F3},
				{Type: board.Push, Piece: board.Pawn, From: board.E4, To: board.E3},
				{Type: board.EnPassant, Piece: board.Pawn, From: board.E4, To: board.D3},
				{Type: board.Push, Piece: board.Pawn, From: board.C4, To: board.C3},
				{Type: board.EnPassant, Piece: board.Pawn, From: board.C4, To: board.D3},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.H7},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.G7},
				{Type: board.Normal, Piece: board.King, From: board.H8, To: board.G8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := board.NewPosition(tt.pieces, 0, tt.enpassant)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, pos.PseudoLegalMoves(tt.turn))
		})
	}
}

func TestPseudoLegalMovesOfficers(t *testing.T) {
	tests := []struct {
		name     string
		pieces   []board.Placement
		expected []board.Move
	}{
		{
			"king, quiets before captures",
			[]board.Placement{
				{Square: board.A3, Color: board.White, Piece: board.King},
				{Square: board.B3, Color: board.Black, Piece: board.Rook},
				{Square: board.A2, Color: board.Black, Piece: board.Bishop},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			[]board.Move{
				{Type: board.Normal, Piece: board.King, From: board.A3, To: board.B2},
				{Type: board.Normal, Piece: board.King, From: board.A3, To: board.B4},
				{Type: board.Normal, Piece: board.King, From: board.A3, To: board.A4},
				{Type: board.Capture, Piece: board.King, From: board.A3, To: board.A2, Capture: board.Bishop},
				{Type: board.Capture, Piece: board.King, From: board.A3, To: board.B3, Capture: board.Rook},
			},
		},
		{
			"knight",
			[]board.Placement{
				{Square: board.A3, Color: board.White, Piece: board.Knight},
				{Square: board.B1, Color: board.Black, Piece: board.Rook},
				{Square: board.B2, Color: board.Black, Piece: board.Bishop},
				{Square: board.C2, Color: board.Black, Piece: board.Queen},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			[]board.Move{
				{Type: board.Normal, Piece: board.Knight, From: board.A3, To: board.C4},
				{Type: board.Normal, Piece: board.Knight, From: board.A3, To: board.B5},
				{Type: board.Capture, Piece: board.Knight, From: board.A3, To: board.B1, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Knight, From: board.A3, To: board.C2, Capture: board.Queen},
			},
		},
		{
			"bishop, partly obstructed",
			[]board.Placement{
				{Square: board.G3, Color: board.White, Piece: board.Bishop},
				{Square: board.F2, Color: board.Black, Piece: board.Rook},
				{Square: board.E5, Color: board.Black, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			[]board.Move{
				{Type: board.Normal, Piece: board.Bishop, From: board.G3, To: board.H2},
				{Type: board.Normal, Piece: board.Bishop, From: board.G3, To: board.H4},
				{Type: board.Normal, Piece: board.Bishop, From: board.G3, To: board.F4},
				{Type: board.Capture, Piece: board.Bishop, From: board.G3, To: board.F2, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Bishop, From: board.G3, To: board.E5, Capture: board.Rook},
			},
		},
		{
			"rook",
			[]board.Placement{
				{Square: board.D3, Color: board.White, Piece: board.Rook},
				{Square: board.B3, Color: board.Black, Piece: board.Rook},
				{Square: board.E3, Color: board.Black, Piece: board.Bishop},
				{Square: board.D5, Color: board.Black, Piece: board.Queen},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			[]board.Move{
				{Type: board.Normal, Piece: board.Rook, From: board.D3, To: board.D1},
				{Type: board.Normal, Piece: board.Rook, From: board.D3, To: board.D2},
				{Type: board.Normal, Piece: board.Rook, From: board.D3, To: board.C3},
				{Type: board.Normal, Piece: board.Rook, From: board.D3, To: board.D4},
				{Type: board.Capture, Piece: board.Rook, From: board.D3, To: board.E3, Capture: board.Bishop},
				{Type: board.Capture, Piece: board.Rook, From: board.D3, To: board.B3, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Rook, From: board.D3, To: board.D5, Capture: board.Queen},
			},
		},
		{
			"queen, union of rook and bishop rays",
			[]board.Placement{
				{Square: board.D3, Color: board.White, Piece: board.Queen},
				{Square: board.C2, Color: board.Black, Piece: board.Rook},
				{Square: board.C4, Color: board.Black, Piece: board.Rook},
				{Square: board.F5, Color: board.Black, Piece: board.Rook},
				{Square: board.B3, Color: board.Black, Piece: board.Rook},
				{Square: board.E3, Color: board.Black, Piece: board.Bishop},
				{Square: board.D5, Color: board.Black, Piece: board.Queen},
				{Square: board.A1, Color: board.White, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.King},
			},
			[]board.Move{
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.F1},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.D1},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.E2},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.D2},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.C3},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.E4},
				{Type: board.Normal, Piece: board.Queen, From: board.D3, To: board.D4},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.C2, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.E3, Capture: board.Bishop},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.B3, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.C4, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.F5, Capture: board.Rook},
				{Type: board.Capture, Piece: board.Queen, From: board.D3, To: board.D5, Capture: board.Queen},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := board.NewPosition(tt.pieces, 0, 0)
			require.NoError(t, err)

			actual := filterByPiece(pos.PseudoLegalMoves(board.White), tt.pieces[0].Piece)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestPseudoLegalMovesCastling(t *testing.T) {
	tests := []struct {
		name     string
		turn     board.Color
		pieces   []board.Placement
		castling board.Castling
		expected []board.Move
	}{
		{
			"no rights",
			board.White,
			[]board.Placement{
				{Square: board.E1, Color: board.White, Piece: board.King},
				{Square: board.H1, Color: board.White, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.Rook},
				{Square: board.A8, Color: board.Black, Piece: board.King},
			},
			0,
			nil,
		},
		{
			"full rights",
			board.White,
			[]board.Placement{
				{Square: board.E1, Color: board.White, Piece: board.King},
				{Square: board.H1, Color: board.White, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.Rook},
				{Square: board.A8, Color: board.Black, Piece: board.King},
			},
			board.FullCastingRights,
			[]board.Move{
				{Type: board.KingSideCastle, Piece: board.King, From: board.E1, To: board.G1},
				{Type: board.QueenSideCastle, Piece: board.King, From: board.E1, To: board.C1},
			},
		},
		{
			"obstructed king side",
			board.Black,
			[]board.Placement{
				{Square: board.E8, Color: board.Black, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.Rook},
				{Square: board.G8, Color: board.White, Piece: board.Bishop},
				{Square: board.A8, Color: board.Black, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.King},
			},
			board.FullCastingRights,
			[]board.Move{
				{Type: board.QueenSideCastle, Piece: board.King, From: board.E8, To: board.C8},
			},
		},
		{
			"partial rights",
			board.Black,
			[]board.Placement{
				{Square: board.E8, Color: board.Black, Piece: board.King},
				{Square: board.H8, Color: board.Black, Piece: board.Rook},
				{Square: board.A8, Color: board.Black, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.King},
			},
			board.BlackQueenSideCastle | board.WhiteKingSideCastle,
			[]board.Move{
				{Type: board.QueenSideCastle, Piece: board.King, From: board.E8, To: board.C8},
			},
		},
		{
			"cannot castle out of check",
			board.White,
			[]board.Placement{
				{Square: board.E1, Color: board.White, Piece: board.King},
				{Square: board.H1, Color: board.White, Piece: board.Rook},
				{Square: board.A1, Color: board.White, Piece: board.Rook},
				{Square: board.E8, Color: board.Black, Piece: board.Rook},
				{Square: board.A8, Color: board.Black, Piece: board.King},
			},
			board.FullCastingRights,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := board.NewPosition(tt.pieces, tt.castling, 0)
			require.NoError(t, err)

			actual := filterCastling(pos.PseudoLegalMoves(tt.turn))
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestPerft(t *testing.T) {
	// See: https://www.chessprogramming.org/Perft_Results.
	tests := []struct {
		fen      string
		depth    int
		expected int64
	}{
		{fen.Initial, 1, 20},
		{fen.Initial, 2, 400},
		{fen.Initial, 3, 8902},
	}

	for _, tt := range tests {
		pos, turn, _, _, err := fen.Decode(tt.fen)
		require.NoError(t, err)

		assert.Equal(t, tt.expected, perft(pos, turn, tt.depth))
	}
}

func perft(pos *board.Position, turn board.Color, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range pos.PseudoLegalMoves(turn) {
		if next, ok := pos.Move(m); ok {
			nodes += perft(next, turn.Opponent(), depth-1)
		}
	}
	return nodes
}

func filterByPiece(ms []board.Move, piece board.Piece) []board.Move {
	var ret []board.Move
	for _, m := range ms {
		if m.Piece == piece {
			ret = append(ret, m)
		}
	}
	return ret
}

func filterCastling(ms []board.Move) []board.Move {
	var ret []board.Move
	for _, m := range ms {
		if m.Type == board.KingSideCastle || m.Type == board.QueenSideCastle {
			ret = append(ret, m)
		}
	}
	return ret
}
