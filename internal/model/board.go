package model

import (
	"fmt"
	"strings"
)

const (
	DefaultRows = 8
	DefaultCols = 8
)

// Board owns the grid, the piece arena and the king-square cache. Grid cells hold handles
// into the arena; a captured piece keeps its arena slot with Alive set to false.
type Board struct {
	rows     int
	cols     int
	grid     []PieceID
	pieces   []Piece
	kings    [2]Square
	hasKing  [2]bool
	lastMove *Move
}

func NewBoard(rows, cols int) *Board {
	b := &Board{
		rows: rows,
		cols: cols,
		grid: make([]PieceID, rows*cols),
	}
	for i := range b.grid {
		b.grid[i] = NoPiece
	}
	return b
}

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStandardBoard returns the 8x8 starting position.
func NewStandardBoard() *Board {
	b := NewBoard(DefaultRows, DefaultCols)
	for col, pt := range backRank {
		b.mustAdd(Black, pt, Square{Row: 0, Col: col})
		b.mustAdd(Black, Pawn, Square{Row: 1, Col: col})
		b.mustAdd(White, Pawn, Square{Row: 6, Col: col})
		b.mustAdd(White, pt, Square{Row: 7, Col: col})
	}
	return b
}

func (b *Board) mustAdd(c Color, pt PieceType, sq Square) {
	if _, err := b.AddPiece(c, pt, sq); err != nil {
		panic(err)
	}
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

func (b *Board) InBounds(sq Square) bool {
	return inBounds(b, sq)
}

func (b *Board) index(sq Square) int {
	return sq.Row*b.cols + sq.Col
}

// At returns the handle on sq, NoPiece if empty or off the board.
func (b *Board) At(sq Square) PieceID {
	if !b.InBounds(sq) {
		return NoPiece
	}
	return b.grid[b.index(sq)]
}

func (b *Board) Occupant(sq Square) (Piece, bool) {
	id := b.At(sq)
	if id == NoPiece {
		return Piece{}, false
	}
	return b.pieces[id], true
}

// Piece returns the record behind a handle. An invalid handle is a corrupted board.
func (b *Board) Piece(id PieceID) *Piece {
	if id < 0 || int(id) >= len(b.pieces) {
		panic(fmt.Sprintf("model: piece handle %d out of range", id))
	}
	return &b.pieces[id]
}

// AddPiece places a new piece during setup. Only one king per color is allowed.
func (b *Board) AddPiece(c Color, pt PieceType, sq Square) (PieceID, error) {
	if !b.InBounds(sq) {
		return NoPiece, fmt.Errorf("square %v is off the board", sq)
	}
	if b.At(sq) != NoPiece {
		return NoPiece, fmt.Errorf("square %s is occupied", sq.Algebraic(b.rows))
	}
	if pt == King && b.hasKing[c] {
		return NoPiece, fmt.Errorf("%s already has a king", c)
	}
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, Piece{Color: c, Type: pt, Position: sq, Alive: true})
	b.grid[b.index(sq)] = id
	if pt == King {
		b.kings[c] = sq
		b.hasKing[c] = true
	}
	return id, nil
}

// Pieces lists the live pieces of c in arena order.
func (b *Board) Pieces(c Color) []PieceID {
	var ids []PieceID
	for i := range b.pieces {
		if b.pieces[i].Alive && b.pieces[i].Color == c {
			ids = append(ids, PieceID(i))
		}
	}
	return ids
}

func (b *Board) KingSquare(c Color) (Square, bool) {
	return b.kings[c], b.hasKing[c]
}

func (b *Board) LastMove() *Move {
	return b.lastMove
}

// SetLastMove is used by callers restoring the predecessor after Undo.
func (b *Board) SetLastMove(m *Move) {
	b.lastMove = m
}

func (b *Board) promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return b.rows - 1
}

func (b *Board) pawnHomeRow(c Color) int {
	if c == White {
		return b.rows - 2
	}
	return 1
}

// newMove classifies a pseudo-legal destination into a move record.
func (b *Board) newMove(from, to Square) Move {
	id := b.At(from)
	p := b.Piece(id)
	m := Move{
		Start:     from,
		End:       to,
		Piece:     id,
		Color:     p.Color,
		MoverType: p.Type,
		Captured:  b.At(to),
		Kind:      Normal,
	}
	switch p.Type {
	case King:
		if d := to.Col - from.Col; d == 2 || d == -2 {
			m.Kind = Castling
			m.KingSide = d > 0
		}
	case Pawn:
		if to.Col != from.Col && m.Captured == NoPiece {
			m.Kind = EnPassant
			m.Captured = b.At(Square{Row: from.Row, Col: to.Col})
		} else if to.Row == b.promotionRow(p.Color) {
			m.Kind = Promotion
		}
	}
	return m
}

// PieceLegalMoves probes every pseudo-legal destination of the piece on from by executing
// it, testing color's king and undoing it. The board, last move included, is unchanged.
func (b *Board) PieceLegalMoves(from Square, color Color) []Move {
	p, ok := b.Occupant(from)
	if !ok || p.Color != color {
		return nil
	}
	var legal []Move
	for _, to := range PseudoLegalMoves(b, from, b.lastMove) {
		m := b.newMove(from, to)
		if b.leavesKingSafe(&m, color) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (b *Board) leavesKingSafe(m *Move, color Color) bool {
	saved := b.lastMove
	b.Execute(m)
	safe := !b.IsInCheck(color)
	b.Undo(m)
	b.lastMove = saved
	return safe
}

// LegalMoves groups the legal moves of every piece of color by start square.
func (b *Board) LegalMoves(color Color) map[Square][]Move {
	legal := make(map[Square][]Move)
	for _, id := range b.Pieces(color) {
		from := b.pieces[id].Position
		if moves := b.PieceLegalMoves(from, color); len(moves) > 0 {
			legal[from] = moves
		}
	}
	return legal
}

// HasLegalMoves stops at the first legal move found.
func (b *Board) HasLegalMoves(color Color) bool {
	for _, id := range b.Pieces(color) {
		from := b.pieces[id].Position
		for _, to := range PseudoLegalMoves(b, from, b.lastMove) {
			m := b.newMove(from, to)
			if b.leavesKingSafe(&m, color) {
				return true
			}
		}
	}
	return false
}

func (b *Board) IsInCheck(color Color) bool {
	if !b.hasKing[color] {
		panic(fmt.Sprintf("model: %s has no king", color))
	}
	return IsSquareAttacked(b, b.kings[color], color.Opposite())
}

func (b *Board) IsCheckmate(color Color) bool {
	return b.IsInCheck(color) && !b.HasLegalMoves(color)
}

func (b *Board) IsStalemate(color Color) bool {
	return !b.IsInCheck(color) && !b.HasLegalMoves(color)
}

// Snapshot copies the grid square by square for projections; empty squares are nil.
func (b *Board) Snapshot() [][]*Piece {
	out := make([][]*Piece, b.rows)
	for r := range out {
		out[r] = make([]*Piece, b.cols)
		for c := range out[r] {
			if p, ok := b.Occupant(Square{Row: r, Col: c}); ok {
				out[r][c] = &p
			}
		}
	}
	return out
}

func (b *Board) String() string {
	var sb strings.Builder
	files := make([]string, b.cols)
	for c := range files {
		files[c] = string(rune('a' + c))
	}
	header := "   " + strings.Join(files, " ") + "\n"
	sb.WriteString(header)
	for r := 0; r < b.rows; r++ {
		fmt.Fprintf(&sb, "%2d ", b.rows-r)
		for c := 0; c < b.cols; c++ {
			if p, ok := b.Occupant(Square{Row: r, Col: c}); ok {
				sb.WriteByte(p.Symbol())
			} else {
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d\n", b.rows-r)
	}
	sb.WriteString(header)
	return sb.String()
}
