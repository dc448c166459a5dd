package model

import "fmt"

// Game drives a Board through turns and keeps the move and position history.
// It is not safe for concurrent use; callers hold one lock per game.
type Game struct {
	board       *Board
	turn        Color
	status      GameStatus
	termination Termination
	moveHistory []*Move
	fenHistory  []string
	startFEN    string
}

// State is the read-only projection handed to transport and persistence.
type State struct {
	Turn        Color       `json:"turn"`
	Status      GameStatus  `json:"status"`
	Termination Termination `json:"termination,omitempty"`
	InCheck     bool        `json:"inCheck"`
	FEN         string      `json:"fen"`
	MoveHistory []string    `json:"moveHistory"`
	FENHistory  []string    `json:"fenHistory"`
	PGN         string      `json:"pgn"`
	Rows        int         `json:"rows"`
	Cols        int         `json:"cols"`
	Board       [][]*Piece  `json:"board"`
}

func NewGame() *Game {
	g := &Game{}
	g.reset(NewStandardBoard(), White)
	return g
}

func NewGameFromFEN(fen string) (*Game, error) {
	g := &Game{}
	if err := g.LoadFEN(fen); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) reset(b *Board, turn Color) {
	g.board = b
	g.turn = turn
	g.status = Ongoing
	g.termination = NotTerminated
	g.moveHistory = nil
	g.startFEN = FEN(b, turn)
	g.fenHistory = []string{g.startFEN}
}

func (g *Game) Board() *Board { return g.board }
func (g *Game) Turn() Color { return g.turn }
func (g *Game) Status() GameStatus { return g.status }
func (g *Game) Termination() Termination { return g.termination }
func (g *Game) FEN() string { return FEN(g.board, g.turn) }
func (g *Game) StartFEN() string { return g.startFEN }

// Moves returns copies of the executed moves, oldest first.
func (g *Game) Moves() []Move {
	out := make([]Move, len(g.moveHistory))
	for i, m := range g.moveHistory {
		out[i] = *m
	}
	return out
}

func (g *Game) SANHistory() []string {
	out := make([]string, len(g.moveHistory))
	for i, m := range g.moveHistory {
		out[i] = m.SAN
	}
	return out
}

func (g *Game) FENHistory() []string {
	return append([]string(nil), g.fenHistory...)
}

// LegalMovesFrom lists the legal moves of the side to move from sq.
func (g *Game) LegalMovesFrom(sq Square) []Move {
	if g.status != Ongoing {
		return nil
	}
	return g.board.PieceLegalMoves(sq, g.turn)
}

// MakeMove plays start->end for the side to move. promotion is ignored unless the move
// promotes; NoPieceType promotes to a queen.
func (g *Game) MakeMove(start, end Square, promotion PieceType) (*Move, error) {
	if g.status != Ongoing {
		return nil, fmt.Errorf("%w: %s", ErrGameAlreadyOver, g.status)
	}
	p, ok := g.board.Occupant(start)
	if !ok {
		return nil, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, start.Algebraic(g.board.rows))
	}
	if p.Color != g.turn {
		return nil, fmt.Errorf("%w: it is %s's turn", ErrIllegalMove, g.turn)
	}

	var move *Move
	for _, m := range g.board.PieceLegalMoves(start, g.turn) {
		if m.End == end {
			found := m
			move = &found
			break
		}
	}
	if move == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, start.Algebraic(g.board.rows), end.Algebraic(g.board.rows))
	}
	if move.Kind == Promotion {
		if promotion != NoPieceType && !isPromotionChoice(promotion) {
			return nil, fmt.Errorf("%w: cannot promote to %s", ErrIllegalMove, promotion)
		}
		move.Promotion = Queen
		if promotion != NoPieceType {
			move.Promotion = promotion
		}
	}

	base := sanBase(g.board, move)
	g.board.Execute(move)

	opponent := g.turn.Opposite()
	move.IsCheck = g.board.IsInCheck(opponent)
	if !g.board.HasLegalMoves(opponent) {
		if move.IsCheck {
			move.IsCheckmate = true
			g.status = winFor(g.turn)
			g.termination = Checkmate
		} else {
			g.status = Draw
			g.termination = Stalemate
		}
	}
	move.SAN = base + checkSuffix(move)
	g.moveHistory = append(g.moveHistory, move)

	g.turn = opponent
	fen := g.FEN()
	g.fenHistory = append(g.fenHistory, fen)
	if g.status == Ongoing && g.occurrences(PositionKey(fen)) >= 3 {
		g.status = Draw
		g.termination = ThreefoldRepetition
	}
	return move, nil
}

func (g *Game) occurrences(key string) int {
	n := 0
	for _, fen := range g.fenHistory {
		if PositionKey(fen) == key {
			n++
		}
	}
	return n
}

// UndoMove reverts the last move and reopens the game.
func (g *Game) UndoMove() (*Move, error) {
	n := len(g.moveHistory)
	if n == 0 {
		return nil, ErrNoMoveToUndo
	}
	last := g.moveHistory[n-1]
	g.moveHistory = g.moveHistory[:n-1]
	g.board.Undo(last)
	if n > 1 {
		g.board.SetLastMove(g.moveHistory[n-2])
	} else {
		g.board.SetLastMove(nil)
	}
	g.fenHistory = g.fenHistory[:len(g.fenHistory)-1]
	g.turn = g.turn.Opposite()
	g.status = Ongoing
	g.termination = NotTerminated
	return last, nil
}

// LoadFEN replaces the board and clears all history. On error the game is unchanged.
func (g *Game) LoadFEN(fen string) error {
	b, turn, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	g.reset(b, turn)
	return nil
}

// LoadPGN replays a PGN from its starting position. On error the game is unchanged.
func (g *Game) LoadPGN(text string) error {
	startFEN, sans := ParsePGN(text)
	replay := &Game{}
	if err := replay.LoadFEN(startFEN); err != nil {
		return fmt.Errorf("%w: %w", ErrUnparseableNotation, err)
	}
	for i, san := range sans {
		m, err := ParseSAN(replay.board, replay.turn, san)
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
		if _, err := replay.MakeMove(m.Start, m.End, m.Promotion); err != nil {
			return fmt.Errorf("%w: move %d %q: %w", ErrUnparseableNotation, i+1, san, err)
		}
	}
	*g = *replay
	return nil
}

func (g *Game) PGN() string {
	return GeneratePGN(g.SANHistory(), g.status, g.startFEN)
}

func (g *Game) State() State {
	return State{
		Turn:        g.turn,
		Status:      g.status,
		Termination: g.termination,
		InCheck:     g.board.IsInCheck(g.turn),
		FEN:         g.FEN(),
		MoveHistory: g.SANHistory(),
		FENHistory:  g.FENHistory(),
		PGN:         g.PGN(),
		Rows:        g.board.rows,
		Cols:        g.board.cols,
		Board:       g.board.Snapshot(),
	}
}

// AnalyzeFEN lists the legal moves of the piece on from in an arbitrary position, for
// whichever side owns it. An empty square yields no moves.
func AnalyzeFEN(fen string, from Square) ([]Move, error) {
	b, _, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	p, ok := b.Occupant(from)
	if !ok {
		return nil, nil
	}
	return b.PieceLegalMoves(from, p.Color), nil
}
