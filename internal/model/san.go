package model

import (
	"fmt"
	"regexp"
	"strings"
)

// MoveToSAN renders m against the position before it is executed. The check and mate
// suffixes come from the move's result flags.
func MoveToSAN(b *Board, m *Move) string {
	return sanBase(b, m) + checkSuffix(m)
}

func sanBase(b *Board, m *Move) string {
	if m.Kind == Castling {
		if m.KingSide {
			return "O-O"
		}
		return "O-O-O"
	}

	var sb strings.Builder
	isCapture := m.Captured != NoPiece
	if m.MoverType != Pawn {
		sb.WriteString(m.MoverType.getPieceNotation())
		sb.WriteString(disambiguation(b, m))
	} else if isCapture {
		sb.WriteString(m.Start.fileNotation())
	}
	if isCapture {
		sb.WriteByte('x')
	}
	sb.WriteString(m.End.Algebraic(b.rows))
	if m.Kind == Promotion {
		sb.WriteByte('=')
		sb.WriteByte(m.promotionType().Letter())
	}
	return sb.String()
}

func checkSuffix(m *Move) string {
	switch {
	case m.IsCheckmate:
		return "#"
	case m.IsCheck:
		return "+"
	}
	return ""
}

// disambiguation looks at the other pieces of the same type and color that can also
// reach m.End: file if that separates them all, else rank, else the full square.
func disambiguation(b *Board, m *Move) string {
	var others []Square
	for _, id := range b.Pieces(m.Color) {
		p := b.pieces[id]
		if id == m.Piece || p.Type != m.MoverType {
			continue
		}
		for _, lm := range b.PieceLegalMoves(p.Position, m.Color) {
			if lm.End == m.End {
				others = append(others, p.Position)
				break
			}
		}
	}
	if len(others) == 0 {
		return ""
	}

	fileUnique, rankUnique := true, true
	for _, sq := range others {
		if sq.Col == m.Start.Col {
			fileUnique = false
		}
		if sq.Row == m.Start.Row {
			rankUnique = false
		}
	}
	switch {
	case fileUnique:
		return m.Start.fileNotation()
	case rankUnique:
		return m.Start.rankNotation(b.rows)
	}
	return m.Start.Algebraic(b.rows)
}

var (
	sanPattern  = regexp.MustCompile(`^([KQRBN])?([a-z]?\d*x?)([a-z]\d+)(=[QRBN])?$`)
	hintPattern = regexp.MustCompile(`^([a-z])?(\d+)?$`)
)

// ParseSAN resolves a SAN string to the single legal move of turn it denotes. The returned
// move carries the promotion choice when one was written.
func ParseSAN(b *Board, turn Color, san string) (Move, error) {
	clean := strings.TrimSpace(san)
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "e.p."))
	clean = strings.TrimRight(clean, "+#?!")

	switch clean {
	case "O-O", "0-0":
		return parseCastling(b, turn, san, true)
	case "O-O-O", "0-0-0":
		return parseCastling(b, turn, san, false)
	}

	match := sanPattern.FindStringSubmatch(clean)
	if match == nil {
		return Move{}, fmt.Errorf("%w: %q", ErrUnparseableNotation, san)
	}
	pieceLetter, prefix, dest, promo := match[1], match[2], match[3], match[4]

	pt := Pawn
	if pieceLetter != "" {
		pt, _ = PieceTypeFromLetter(pieceLetter[0])
	}
	end, err := ParseSquare(dest, b.rows)
	if err != nil || !b.InBounds(end) {
		return Move{}, fmt.Errorf("%w: %q: bad destination", ErrUnparseableNotation, san)
	}

	// A trailing x is a capture marker, or the file hint on boards with an x-file.
	var hints []string
	if strings.HasSuffix(prefix, "x") {
		hints = append(hints, strings.TrimSuffix(prefix, "x"))
	}
	if hintPattern.MatchString(prefix) {
		hints = append(hints, prefix)
	}

	var candidates []Move
	for i, hint := range hints {
		found := sanCandidates(b, turn, pt, hint, end)
		if i == 0 || len(found) == 1 {
			candidates = found
		}
		if len(candidates) == 1 {
			break
		}
	}
	if len(candidates) != 1 {
		return Move{}, fmt.Errorf("%w: %q matches %d legal moves", ErrUnparseableNotation, san, len(candidates))
	}

	m := candidates[0]
	if promo != "" {
		if m.Kind != Promotion {
			return Move{}, fmt.Errorf("%w: %q: promotion on a non-promoting move", ErrUnparseableNotation, san)
		}
		m.Promotion, _ = PieceTypeFromLetter(promo[1])
	}
	return m, nil
}

func parseCastling(b *Board, turn Color, san string, kingSide bool) (Move, error) {
	from, ok := b.KingSquare(turn)
	if ok {
		for _, m := range b.PieceLegalMoves(from, turn) {
			if m.Kind == Castling && m.KingSide == kingSide {
				return m, nil
			}
		}
	}
	return Move{}, fmt.Errorf("%w: %q: castling not available", ErrUnparseableNotation, san)
}

// sanCandidates lists the legal moves of turn's pt pieces to end whose start square
// matches hint, a file letter and/or rank number.
func sanCandidates(b *Board, turn Color, pt PieceType, hint string, end Square) []Move {
	m := hintPattern.FindStringSubmatch(hint)
	file, rank := m[1], m[2]

	var out []Move
	for _, id := range b.Pieces(turn) {
		p := b.pieces[id]
		if p.Type != pt {
			continue
		}
		if file != "" && p.Position.fileNotation() != file {
			continue
		}
		if rank != "" && p.Position.rankNotation(b.rows) != rank {
			continue
		}
		for _, mv := range b.PieceLegalMoves(p.Position, turn) {
			if mv.End == end {
				out = append(out, mv)
				break
			}
		}
	}
	return out
}
