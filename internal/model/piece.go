package model

import (
	"fmt"
	"strconv"
)

// Square is a (row, col) pair. Row 0 is the top rank as seen from White (rank 8 on 8x8).
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) add(d Square) Square {
	return Square{Row: s.Row + d.Row, Col: s.Col + d.Col}
}

// Algebraic renders the square for a board with the given number of rows ("e4").
func (s Square) Algebraic(rows int) string {
	return s.fileNotation() + s.rankNotation(rows)
}

func (s Square) fileNotation() string {
	return string(rune('a' + s.Col))
}

func (s Square) rankNotation(rows int) string {
	return strconv.Itoa(rows - s.Row)
}

// ParseSquare parses "e4" style coordinates for a board with the given number of rows.
func ParseSquare(s string, rows int) (Square, error) {
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil || rank < 1 || rank > rows {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return Square{Row: rows - rank, Col: int(s[0] - 'a')}, nil
}

// PieceID is a stable handle into a Board's piece arena. Promotion mutates the
// record behind the handle, so moves keep referring to the same piece.
type PieceID int

const NoPiece PieceID = -1

type Piece struct {
	Color    Color     `json:"color"`
	Type     PieceType `json:"type"`
	Position Square    `json:"position"`
	// Step counts executed moves of this piece; zero means it never moved.
	Step int `json:"step"`
	// Alive is false while the piece is captured.
	Alive bool `json:"-"`
}

// Symbol is the FEN letter: upper case for White.
func (p Piece) Symbol() byte {
	c := p.Type.Letter()
	if p.Color == Black {
		c += 'a' - 'A'
	}
	return c
}

func pieceFromSymbol(c byte) (Color, PieceType, bool) {
	pt, ok := PieceTypeFromLetter(c)
	if !ok {
		return White, NoPieceType, false
	}
	if c >= 'a' && c <= 'z' {
		return Black, pt, true
	}
	return White, pt, true
}
