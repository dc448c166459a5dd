package model

import (
	"errors"
	"reflect"
	"testing"
)

const scholarsMate = "1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0"

func TestParsePGNStripsDecorations(t *testing.T) {
	text := `[Event "Casual"]
[Site "?"]

1. e4 {best by test} e5 2. Nf3 (2. f4 exf4 (2... d5)) Nc6 $1 3. Bb5 ; the Spanish
a6 1/2-1/2`

	fen, sans := ParsePGN(text)
	if fen != StartFEN {
		t.Errorf("start FEN = %q", fen)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}
	if !reflect.DeepEqual(sans, want) {
		t.Errorf("moves = %v, want %v", sans, want)
	}
}

func TestParsePGNFENTag(t *testing.T) {
	text := "[SetUp \"1\"]\n[FEN \"4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1\"]\n\n1... d5 2. exd6 *"
	fen, sans := ParsePGN(text)
	if fen != "4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1" {
		t.Errorf("start FEN = %q", fen)
	}
	if !reflect.DeepEqual(sans, []string{"d5", "exd6"}) {
		t.Errorf("moves = %v", sans)
	}
}

func TestGeneratePGN(t *testing.T) {
	tests := []struct {
		name     string
		history  []string
		status   GameStatus
		startFEN string
		want     string
	}{
		{"empty", nil, Ongoing, StartFEN, "*"},
		{"odd length", []string{"e4", "e5", "Nf3"}, Ongoing, StartFEN, "1. e4 e5 2. Nf3 *"},
		{"draw", []string{"e4"}, Draw, "", "1. e4 1/2-1/2"},
		{
			"black to move first",
			[]string{"d5", "exd6"},
			Ongoing,
			"4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1",
			"[SetUp \"1\"]\n[FEN \"4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1\"]\n\n1... d5 2. exd6 *",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GeneratePGN(tc.history, tc.status, tc.startFEN); got != tc.want {
				t.Errorf("GeneratePGN\nwant %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestLoadPGNScholarsMate(t *testing.T) {
	g := NewGame()
	if err := g.LoadPGN(scholarsMate); err != nil {
		t.Fatal(err)
	}
	if g.Status() != WhiteWin || g.Termination() != Checkmate {
		t.Errorf("status %s by %s, want white_win by checkmate", g.Status(), g.Termination())
	}
	if got := g.PGN(); got != scholarsMate {
		t.Errorf("PGN = %q", got)
	}
	if n := len(g.FENHistory()); n != 8 {
		t.Errorf("fen history has %d entries, want 8", n)
	}
}

func TestLoadPGNFromSetUpPosition(t *testing.T) {
	text := "[SetUp \"1\"]\n[FEN \"4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1\"]\n\n1... d5 2. exd6 *"
	g := NewGame()
	if err := g.LoadPGN(text); err != nil {
		t.Fatal(err)
	}
	if got := g.PGN(); got != text {
		t.Errorf("PGN\nwant %q\ngot  %q", text, got)
	}
	if moves := g.Moves(); moves[1].Kind != EnPassant {
		t.Errorf("second move is %s, want en passant", moves[1].Kind)
	}
}

func TestLoadPGNFailureLeavesGameUnchanged(t *testing.T) {
	tests := []struct {
		name string
		pgn  string
		also error
	}{
		{"illegal move", "1. e4 e5 2. Ke3", nil},
		{"unknown token", "1. e4 banana", nil},
		{"bad FEN tag", "[FEN \"not a fen\"]\n1. e4", ErrInvalidFEN},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGame()
			play(t, g, "d2d4")
			fen, history := g.FEN(), g.SANHistory()

			err := g.LoadPGN(tc.pgn)
			if !errors.Is(err, ErrUnparseableNotation) {
				t.Fatalf("err = %v, want ErrUnparseableNotation", err)
			}
			if tc.also != nil && !errors.Is(err, tc.also) {
				t.Errorf("err = %v, want it to wrap %v", err, tc.also)
			}
			if g.FEN() != fen || !reflect.DeepEqual(g.SANHistory(), history) {
				t.Error("failed load modified the game")
			}
		})
	}
}
