package controller

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/ws"
)

type recorder struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (r *recorder) WriteJSON(v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, v.(ws.Message))
	return nil
}

func (r *recorder) last(t *testing.T) ws.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		t.Fatal("no messages")
	}
	return r.msgs[len(r.msgs)-1]
}

func message(t *testing.T, typ ws.MessageType, payload any) ws.Message {
	t.Helper()
	msg, err := ws.NewMessage(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestHandleMessage(t *testing.T) {
	_, gs := newTestApp(t)
	wsc := NewWebSocketController(gs, zerolog.Nop())

	mover, watcher := &recorder{}, &recorder{}
	room, err := gs.Connect("table", "mover", mover)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gs.Connect("table", "watcher", watcher); err != nil {
		t.Fatal(err)
	}

	e2 := model.Square{Row: 6, Col: 4}
	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeGetMoves, ws.GetMovesPayload{Pos: e2})); err != nil {
		t.Fatal(err)
	}
	reply := mover.last(t)
	var options ws.PieceMovesPayload
	if err := json.Unmarshal(reply.Payload, &options); err != nil {
		t.Fatal(err)
	}
	if reply.Type != ws.MessageTypePieceMoves || len(options.Moves) != 2 {
		t.Errorf("reply = %s %+v", reply.Type, options)
	}
	if watcher.last(t).Type != ws.MessageTypeInit {
		t.Error("piece_moves leaked to another client")
	}

	move := ws.MovePayload{Start: e2, End: model.Square{Row: 4, Col: 4}}
	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeMove, move)); err != nil {
		t.Fatal(err)
	}
	var update ws.UpdatePayload
	if err := json.Unmarshal(watcher.last(t).Payload, &update); err != nil {
		t.Fatal(err)
	}
	if update.LastMove == nil || update.LastMove.SAN != "e4" {
		t.Errorf("watcher update = %+v", update)
	}

	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeMove, move)); err == nil {
		t.Error("moving from an empty square succeeded")
	}
	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeUndo, nil)); err != nil {
		t.Fatal(err)
	}
	if room.State().FEN != model.StartFEN {
		t.Error("undo did not restore the start position")
	}

	fen := "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	if err := wsc.handleMessage(room, "watcher", message(t, ws.MessageTypeLoadFEN, ws.LoadFENPayload{FEN: fen})); err != nil {
		t.Fatal(err)
	}
	if got := mover.last(t); got.Type != ws.MessageTypeInit || room.State().FEN != fen {
		t.Errorf("load_fen broadcast %s, FEN %q", got.Type, room.State().FEN)
	}

	pgn := "1. d4 d5 2. c4 *"
	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeLoadPGN, ws.LoadPGNPayload{PGN: pgn})); err != nil {
		t.Fatal(err)
	}
	if got := room.State().MoveHistory; len(got) != 3 {
		t.Errorf("history after load_pgn = %v", got)
	}

	if err := wsc.handleMessage(room, "mover", message(t, ws.MessageTypeReset, nil)); err != nil {
		t.Fatal(err)
	}
	if room.State().FEN != model.StartFEN {
		t.Error("reset did not restore the start position")
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	_, gs := newTestApp(t)
	wsc := NewWebSocketController(gs, zerolog.Nop())
	room, err := gs.Connect("table", "alice", &recorder{})
	if err != nil {
		t.Fatal(err)
	}

	bad := []ws.Message{
		{Type: "resign"},
		{Type: ws.MessageTypeMove},
		{Type: ws.MessageTypeGetMoves, Payload: json.RawMessage(`"e2"`)},
		message(t, ws.MessageTypeLoadFEN, ws.LoadFENPayload{FEN: "garbage"}),
		message(t, ws.MessageTypeLoadPGN, ws.LoadPGNPayload{PGN: "1. e5"}),
		message(t, ws.MessageTypeUndo, nil),
	}
	for _, msg := range bad {
		if err := wsc.handleMessage(room, "alice", msg); err == nil {
			t.Errorf("%s %s accepted", msg.Type, msg.Payload)
		}
	}
	if room.State().FEN != model.StartFEN {
		t.Error("rejected messages changed the game")
	}
}
