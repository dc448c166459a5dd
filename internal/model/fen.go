package model

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN reads the placement and active-color fields. Castling rights and the en passant
// square are not read: eligibility is recomputed from piece step counters and the last
// executed move. Board dimensions come from the placement field.
func ParseFEN(fen string) (*Board, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, White, fmt.Errorf("%w: empty string", ErrInvalidFEN)
	}

	ranks := strings.Split(fields[0], "/")
	type placed struct {
		color Color
		typ   PieceType
		sq    Square
	}
	var pieces []placed
	cols := -1
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); {
			c := rank[i]
			if c >= '0' && c <= '9' {
				j := i
				for j < len(rank) && rank[j] >= '0' && rank[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(rank[i:j])
				if n == 0 {
					return nil, White, fmt.Errorf("%w: zero-length gap in rank %q", ErrInvalidFEN, rank)
				}
				col += n
				i = j
				continue
			}
			color, pt, ok := pieceFromSymbol(c)
			if !ok {
				return nil, White, fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			pieces = append(pieces, placed{color: color, typ: pt, sq: Square{Row: row, Col: col}})
			col++
			i++
		}
		if cols == -1 {
			cols = col
		} else if col != cols {
			return nil, White, fmt.Errorf("%w: rank %q has %d squares, want %d", ErrInvalidFEN, rank, col, cols)
		}
	}
	if cols < 1 || cols > 26 {
		return nil, White, fmt.Errorf("%w: unsupported board width %d", ErrInvalidFEN, cols)
	}

	b := NewBoard(len(ranks), cols)
	for _, p := range pieces {
		id, err := b.AddPiece(p.color, p.typ, p.sq)
		if err != nil {
			return nil, White, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		// A pawn away from its home rank has moved and loses the double step.
		if p.typ == Pawn && p.sq.Row != b.pawnHomeRow(p.color) {
			b.pieces[id].Step = 1
		}
	}
	for _, c := range []Color{White, Black} {
		if _, ok := b.KingSquare(c); !ok {
			return nil, White, fmt.Errorf("%w: %s has no king", ErrInvalidFEN, c)
		}
	}

	turn := White
	if len(fields) > 1 {
		switch fields[1] {
		case "w":
		case "b":
			turn = Black
		default:
			return nil, White, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, fields[1])
		}
	}
	return b, turn, nil
}

// FEN exports all six fields. Castling letters and the en passant square are derived from
// engine state; the move counters are fixed placeholders.
func FEN(b *Board, turn Color) string {
	side := "w"
	if turn == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s 0 1", placement(b), side, castlingRights(b), enPassantSquare(b))
}

// PositionKey is the placement plus active color, the identity used for repetition.
func PositionKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return strings.Join(fields, " ")
	}
	return fields[0] + " " + fields[1]
}

func placement(b *Board) string {
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		empty := 0
		for c := 0; c < b.cols; c++ {
			p, ok := b.Occupant(Square{Row: r, Col: c})
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r < b.rows-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// castlingRights only applies to the standard 8x8 layout with kings on the e-file.
func castlingRights(b *Board) string {
	if b.rows != DefaultRows || b.cols != DefaultCols {
		return "-"
	}
	var sb strings.Builder
	for _, side := range []struct {
		color       Color
		row         int
		king, queen byte
	}{
		{White, 7, 'K', 'Q'},
		{Black, 0, 'k', 'q'},
	} {
		if !b.unmoved(side.color, King, Square{Row: side.row, Col: 4}) {
			continue
		}
		if b.unmoved(side.color, Rook, Square{Row: side.row, Col: 7}) {
			sb.WriteByte(side.king)
		}
		if b.unmoved(side.color, Rook, Square{Row: side.row, Col: 0}) {
			sb.WriteByte(side.queen)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func (b *Board) unmoved(c Color, pt PieceType, sq Square) bool {
	p, ok := b.Occupant(sq)
	return ok && p.Color == c && p.Type == pt && p.Step == 0
}

func enPassantSquare(b *Board) string {
	last := b.lastMove
	if last == nil || last.MoverType != Pawn {
		return "-"
	}
	if d := last.Start.Row - last.End.Row; d != 2 && d != -2 {
		return "-"
	}
	passed := Square{Row: (last.Start.Row + last.End.Row) / 2, Col: last.Start.Col}
	return passed.Algebraic(b.rows)
}
