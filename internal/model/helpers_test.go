package model

import (
	"reflect"
	"testing"
)

func sq(t testing.TB, s string) Square {
	t.Helper()
	v, err := ParseSquare(s, DefaultRows)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func mustGame(t testing.TB, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen)
	if err != nil {
		t.Fatalf("NewGameFromFEN(%q): %v", fen, err)
	}
	return g
}

// play applies coordinate moves such as "e2e4" or "a7a8n".
func play(t testing.TB, g *Game, moves ...string) *Move {
	t.Helper()
	var last *Move
	for _, uci := range moves {
		promo := NoPieceType
		if len(uci) == 5 {
			promo, _ = PieceTypeFromLetter(uci[4])
		}
		m, err := g.MakeMove(sq(t, uci[0:2]), sq(t, uci[2:4]), promo)
		if err != nil {
			t.Fatalf("MakeMove(%s): %v\n%s", uci, err, g.Board())
		}
		last = m
	}
	return last
}

type boardState struct {
	grid     []PieceID
	pieces   []Piece
	kings    [2]Square
	hasKing  [2]bool
	lastMove *Move
}

func captureState(b *Board) boardState {
	return boardState{
		grid:     append([]PieceID(nil), b.grid...),
		pieces:   append([]Piece(nil), b.pieces...),
		kings:    b.kings,
		hasKing:  b.hasKing,
		lastMove: b.lastMove,
	}
}

func assertSameState(t testing.TB, want, got boardState) {
	t.Helper()
	if !reflect.DeepEqual(want.grid, got.grid) {
		t.Errorf("grid differs:\nwant %v\ngot  %v", want.grid, got.grid)
	}
	if !reflect.DeepEqual(want.pieces, got.pieces) {
		t.Errorf("pieces differ:\nwant %+v\ngot  %+v", want.pieces, got.pieces)
	}
	if want.kings != got.kings || want.hasKing != got.hasKing {
		t.Errorf("king cache differs: want %v got %v", want.kings, got.kings)
	}
	if want.lastMove != got.lastMove {
		t.Errorf("last move differs: want %v got %v", want.lastMove, got.lastMove)
	}
}

func legalUCI(b *Board, c Color) []string {
	var out []string
	for _, moves := range b.LegalMoves(c) {
		for _, m := range moves {
			if m.Kind == Promotion {
				for _, pt := range []PieceType{Queen, Rook, Bishop, Knight} {
					m.Promotion = pt
					out = append(out, m.UCI(b.rows))
				}
				continue
			}
			out = append(out, m.UCI(b.rows))
		}
	}
	return out
}
