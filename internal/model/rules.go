package model

// Grid is the read-only view the move rules operate on. Board implements it.
type Grid interface {
	Rows() int
	Cols() int
	Occupant(sq Square) (Piece, bool)
}

var (
	straightDirs  = []Square{{Row: 0, Col: 1}, {Row: 0, Col: -1}, {Row: 1, Col: 0}, {Row: -1, Col: 0}}
	diagonalDirs  = []Square{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	knightOffsets = []Square{
		{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1},
		{Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2},
	}
	kingOffsets = []Square{
		{Row: 0, Col: 1}, {Row: 0, Col: -1}, {Row: 1, Col: 0}, {Row: -1, Col: 0},
		{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1},
	}
)

type moveGenerator func(g Grid, from Square, p Piece, last *Move) []Square

var pseudoMoveTable = [...]moveGenerator{
	Pawn:   pawnMoves,
	Rook:   rookMoves,
	Knight: knightMoves,
	Bishop: bishopMoves,
	Queen:  queenMoves,
	King:   kingMoves,
}

func inBounds(g Grid, sq Square) bool {
	return sq.Row >= 0 && sq.Row < g.Rows() && sq.Col >= 0 && sq.Col < g.Cols()
}

func maxRange(g Grid) int {
	if g.Rows() > g.Cols() {
		return g.Rows()
	}
	return g.Cols()
}

// PseudoLegalMoves returns the destinations of the piece on from, ignoring king safety.
// last is the most recently executed move, used for en passant.
func PseudoLegalMoves(g Grid, from Square, last *Move) []Square {
	p, ok := g.Occupant(from)
	if !ok || int(p.Type) >= len(pseudoMoveTable) || pseudoMoveTable[p.Type] == nil {
		return nil
	}
	return pseudoMoveTable[p.Type](g, from, p, last)
}

// rayMoves marches along each direction up to limit squares. Empty squares are added and
// the ray continues; an enemy square is added and stops the ray; a friendly one just stops it.
func rayMoves(g Grid, from Square, color Color, dirs []Square, limit int) []Square {
	var moves []Square
	for _, d := range dirs {
		target := from
		for i := 0; i < limit; i++ {
			target = target.add(d)
			if !inBounds(g, target) {
				break
			}
			occupant, ok := g.Occupant(target)
			if !ok {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

func rookMoves(g Grid, from Square, p Piece, _ *Move) []Square {
	return rayMoves(g, from, p.Color, straightDirs, maxRange(g))
}

func bishopMoves(g Grid, from Square, p Piece, _ *Move) []Square {
	return rayMoves(g, from, p.Color, diagonalDirs, maxRange(g))
}

func queenMoves(g Grid, from Square, p Piece, last *Move) []Square {
	return append(rookMoves(g, from, p, last), bishopMoves(g, from, p, last)...)
}

func knightMoves(g Grid, from Square, p Piece, _ *Move) []Square {
	return rayMoves(g, from, p.Color, knightOffsets, 1)
}

// pawnDirection is the row delta of a forward pawn step. White moves toward row 0.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnMoves(g Grid, from Square, p Piece, last *Move) []Square {
	var moves []Square
	dir := pawnDirection(p.Color)

	one := Square{Row: from.Row + dir, Col: from.Col}
	if inBounds(g, one) {
		if _, occupied := g.Occupant(one); !occupied {
			moves = append(moves, one)
			two := Square{Row: from.Row + 2*dir, Col: from.Col}
			if p.Step == 0 && inBounds(g, two) {
				if _, occupied := g.Occupant(two); !occupied {
					moves = append(moves, two)
				}
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		target := Square{Row: from.Row + dir, Col: from.Col + dc}
		if !inBounds(g, target) {
			continue
		}
		occupant, occupied := g.Occupant(target)
		if occupied {
			if occupant.Color != p.Color {
				moves = append(moves, target)
			}
			continue
		}
		if isEnPassantTarget(last, p.Color, Square{Row: from.Row, Col: from.Col + dc}) {
			moves = append(moves, target)
		}
	}
	return moves
}

// isEnPassantTarget reports whether last was an enemy pawn double step landing on beside.
func isEnPassantTarget(last *Move, color Color, beside Square) bool {
	if last == nil || last.MoverType != Pawn || last.Color == color {
		return false
	}
	if last.End != beside {
		return false
	}
	rows := last.Start.Row - last.End.Row
	return rows == 2 || rows == -2
}

func kingMoves(g Grid, from Square, p Piece, _ *Move) []Square {
	moves := rayMoves(g, from, p.Color, kingOffsets, 1)
	if p.Step > 0 {
		return moves
	}
	enemy := p.Color.Opposite()
	if IsSquareAttacked(g, from, enemy) {
		return moves
	}
	for _, rookCol := range []int{0, g.Cols() - 1} {
		if dest, ok := castlingDestination(g, from, p.Color, rookCol); ok {
			moves = append(moves, dest)
		}
	}
	return moves
}

// castlingDestination checks the unmoved rook on rookCol, the empty bridge between it and
// the king, and that the two squares the king crosses and lands on are not attacked.
func castlingDestination(g Grid, from Square, color Color, rookCol int) (Square, bool) {
	step := 1
	if rookCol < from.Col {
		step = -1
	}
	if (rookCol-from.Col)*step < 3 {
		return Square{}, false
	}
	rook, ok := g.Occupant(Square{Row: from.Row, Col: rookCol})
	if !ok || rook.Type != Rook || rook.Color != color || rook.Step != 0 {
		return Square{}, false
	}
	for col := from.Col + step; col != rookCol; col += step {
		if _, occupied := g.Occupant(Square{Row: from.Row, Col: col}); occupied {
			return Square{}, false
		}
	}
	enemy := color.Opposite()
	for _, col := range []int{from.Col + step, from.Col + 2*step} {
		if IsSquareAttacked(g, Square{Row: from.Row, Col: col}, enemy) {
			return Square{}, false
		}
	}
	return Square{Row: from.Row, Col: from.Col + 2*step}, true
}

type attackProbe struct {
	dirs   []Square
	types  uint8
	ranged bool
}

func typeMask(types ...PieceType) uint8 {
	var m uint8
	for _, t := range types {
		m |= 1 << t
	}
	return m
}

var (
	knightProbe   = attackProbe{dirs: knightOffsets, types: typeMask(Knight)}
	straightProbe = attackProbe{dirs: straightDirs, types: typeMask(Rook, Queen), ranged: true}
	diagonalProbe = attackProbe{dirs: diagonalDirs, types: typeMask(Bishop, Queen), ranged: true}
	kingProbe     = attackProbe{dirs: kingOffsets, types: typeMask(King)}
	whitePawnDirs = []Square{{Row: 1, Col: -1}, {Row: 1, Col: 1}}
	blackPawnDirs = []Square{{Row: -1, Col: -1}, {Row: -1, Col: 1}}
)

// IsSquareAttacked reverse-probes from target: along every ray or offset, the first piece
// met must belong to by and be able to attack along that pattern.
func IsSquareAttacked(g Grid, target Square, by Color) bool {
	// An attacking white pawn sits one row below the target, a black one a row above.
	pawnProbe := attackProbe{dirs: whitePawnDirs, types: typeMask(Pawn)}
	if by == Black {
		pawnProbe.dirs = blackPawnDirs
	}
	for _, probe := range []attackProbe{knightProbe, straightProbe, diagonalProbe, pawnProbe, kingProbe} {
		limit := 1
		if probe.ranged {
			limit = maxRange(g)
		}
		for _, d := range probe.dirs {
			sq := target
			for i := 0; i < limit; i++ {
				sq = sq.add(d)
				if !inBounds(g, sq) {
					break
				}
				p, ok := g.Occupant(sq)
				if !ok {
					continue
				}
				if p.Color == by && probe.types&(1<<p.Type) != 0 {
					return true
				}
				break
			}
		}
	}
	return false
}
