package model

import "fmt"

// Move is a plain record; Board.Execute and Board.Undo are its state transitions.
// Only the result flags and SAN change after construction.
type Move struct {
	Start     Square    `json:"start"`
	End       Square    `json:"end"`
	Piece     PieceID   `json:"-"`
	Color     Color     `json:"color"`
	MoverType PieceType `json:"piece"`
	Captured  PieceID   `json:"-"`
	Kind      MoveKind  `json:"kind"`
	Promotion PieceType `json:"promotion,omitempty"`
	// KingSide is set for castling toward the higher file.
	KingSide bool `json:"kingSide,omitempty"`

	IsCheck     bool   `json:"isCheck"`
	IsCheckmate bool   `json:"isCheckmate"`
	SAN         string `json:"san"`
}

func (m *Move) promotionType() PieceType {
	if m.Promotion == NoPieceType {
		return Queen
	}
	return m.Promotion
}

// UCI renders the move as coordinates ("e2e4", "a7a8q").
func (m *Move) UCI(rows int) string {
	s := m.Start.Algebraic(rows) + m.End.Algebraic(rows)
	if m.Kind == Promotion {
		s += string(m.promotionType().Letter() + 'a' - 'A')
	}
	return s
}

func (m *Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return fmt.Sprintf("Move(%v->%v)", m.Start, m.End)
}

func (b *Board) castlingRookSquares(m *Move) (from, to Square) {
	row := m.Start.Row
	if m.KingSide {
		return Square{Row: row, Col: b.cols - 1}, Square{Row: row, Col: m.End.Col - 1}
	}
	return Square{Row: row, Col: 0}, Square{Row: row, Col: m.End.Col + 1}
}

func (b *Board) relocate(id PieceID, from, to Square, step int) {
	p := b.Piece(id)
	b.grid[b.index(from)] = NoPiece
	b.grid[b.index(to)] = id
	p.Position = to
	p.Step += step
	if p.Type == King {
		b.kings[p.Color] = to
	}
}

// Execute applies m and records it as the board's last move. The captured piece is
// removed from its own recorded square, which differs from m.End for en passant.
func (b *Board) Execute(m *Move) {
	if m.Captured != NoPiece {
		c := b.Piece(m.Captured)
		b.grid[b.index(c.Position)] = NoPiece
		c.Alive = false
	}
	b.relocate(m.Piece, m.Start, m.End, 1)
	switch m.Kind {
	case Castling:
		from, to := b.castlingRookSquares(m)
		b.relocate(b.At(from), from, to, 1)
	case Promotion:
		b.Piece(m.Piece).Type = m.promotionType()
	}
	b.lastMove = m
}

// Undo is the exact inverse of Execute except for the last move, which the caller restores.
func (b *Board) Undo(m *Move) {
	switch m.Kind {
	case Promotion:
		// Restore the pawn first so the relocation below sees the original type.
		b.Piece(m.Piece).Type = m.MoverType
	case Castling:
		from, to := b.castlingRookSquares(m)
		b.relocate(b.At(to), to, from, -1)
	}
	b.relocate(m.Piece, m.End, m.Start, -1)
	if m.Captured != NoPiece {
		c := b.Piece(m.Captured)
		c.Alive = true
		b.grid[b.index(c.Position)] = m.Captured
	}
}
