package model

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// PieceType is a closed enum; it indexes the move generator table in rules.go.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var pieceTypeNames = [...]string{
	NoPieceType: "",
	Pawn:        "pawn",
	Rook:        "rook",
	Knight:      "knight",
	Bishop:      "bishop",
	Queen:       "queen",
	King:        "king",
}

const pieceLetters = " PRNBQK"

func (p PieceType) String() string {
	if int(p) < len(pieceTypeNames) {
		return pieceTypeNames[p]
	}
	return fmt.Sprintf("PieceType(%d)", p)
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	i, ok := indexOfName(pieceTypeNames[:], string(text))
	if !ok {
		return fmt.Errorf("unknown piece type %q", text)
	}
	*p = PieceType(i)
	return nil
}

// Letter returns the upper-case notation letter, 'P' for pawns.
func (p PieceType) Letter() byte {
	if p == NoPieceType || int(p) >= len(pieceLetters) {
		return 0
	}
	return pieceLetters[p]
}

// getPieceNotation is the SAN prefix: empty for pawns.
func (p PieceType) getPieceNotation() string {
	if p == Pawn || p == NoPieceType {
		return ""
	}
	return string(p.Letter())
}

// PieceTypeFromLetter accepts either case.
func PieceTypeFromLetter(c byte) (PieceType, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 1; i < len(pieceLetters); i++ {
		if pieceLetters[i] == c {
			return PieceType(i), true
		}
	}
	return NoPieceType, false
}

// ParsePromotion maps the transport's promotion field ("Q", "n", "queen", "") to a type.
// The empty string selects NoPieceType, which promotes to a queen.
func ParsePromotion(s string) (PieceType, error) {
	if s == "" {
		return NoPieceType, nil
	}
	if len(s) == 1 {
		if pt, ok := PieceTypeFromLetter(s[0]); ok && isPromotionChoice(pt) {
			return pt, nil
		}
	}
	for pt := Rook; pt <= Queen; pt++ {
		if pieceTypeNames[pt] == s {
			return pt, nil
		}
	}
	return NoPieceType, fmt.Errorf("%w: invalid promotion choice %q", ErrIllegalMove, s)
}

func isPromotionChoice(p PieceType) bool {
	return p == Queen || p == Rook || p == Bishop || p == Knight
}

type MoveKind uint8

const (
	Normal MoveKind = iota
	EnPassant
	Castling
	Promotion
)

var moveKindNames = [...]string{
	Normal:    "normal",
	EnPassant: "en_passant",
	Castling:  "castling",
	Promotion: "promotion",
}

func (k MoveKind) String() string {
	if int(k) < len(moveKindNames) {
		return moveKindNames[k]
	}
	return fmt.Sprintf("MoveKind(%d)", k)
}

func (k MoveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MoveKind) UnmarshalText(text []byte) error {
	i, ok := indexOfName(moveKindNames[:], string(text))
	if !ok {
		return fmt.Errorf("unknown move kind %q", text)
	}
	*k = MoveKind(i)
	return nil
}

type GameStatus uint8

const (
	Ongoing GameStatus = iota
	Draw
	WhiteWin
	BlackWin
)

var gameStatusNames = [...]string{
	Ongoing:  "ongoing",
	Draw:     "draw",
	WhiteWin: "white_win",
	BlackWin: "black_win",
}

func (s GameStatus) String() string {
	if int(s) < len(gameStatusNames) {
		return gameStatusNames[s]
	}
	return fmt.Sprintf("GameStatus(%d)", s)
}

func (s GameStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *GameStatus) UnmarshalText(text []byte) error {
	i, ok := indexOfName(gameStatusNames[:], string(text))
	if !ok {
		return fmt.Errorf("unknown game status %q", text)
	}
	*s = GameStatus(i)
	return nil
}

// Result is the PGN result token.
func (s GameStatus) Result() string {
	switch s {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

func winFor(c Color) GameStatus {
	if c == White {
		return WhiteWin
	}
	return BlackWin
}

// Termination records why a game left Ongoing.
type Termination uint8

const (
	NotTerminated Termination = iota
	Checkmate
	Stalemate
	ThreefoldRepetition
)

var terminationNames = [...]string{
	NotTerminated:       "",
	Checkmate:           "checkmate",
	Stalemate:           "stalemate",
	ThreefoldRepetition: "threefold_repetition",
}

func (t Termination) String() string {
	if int(t) < len(terminationNames) {
		return terminationNames[t]
	}
	return fmt.Sprintf("Termination(%d)", t)
}

func (t Termination) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Termination) UnmarshalText(text []byte) error {
	i, ok := indexOfName(terminationNames[:], string(text))
	if !ok {
		return fmt.Errorf("unknown termination %q", text)
	}
	*t = Termination(i)
	return nil
}

func indexOfName(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
