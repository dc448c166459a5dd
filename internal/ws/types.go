package ws

import (
	"encoding/json"

	"github.com/yunpiaopiaoa/chess/internal/model"
)

// MessageType represents the different kinds of messages exchanged on a room socket
type MessageType string

const (
	// client -> server
	MessageTypeGetMoves MessageType = "get_moves"
	MessageTypeMove     MessageType = "move"
	MessageTypeUndo     MessageType = "undo"
	MessageTypeReset    MessageType = "reset"
	MessageTypeLoadFEN  MessageType = "load_fen"
	MessageTypeLoadPGN  MessageType = "load_pgn"

	// server -> client
	MessageTypeInit       MessageType = "init"
	MessageTypeUpdate     MessageType = "update"
	MessageTypePieceMoves MessageType = "piece_moves"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// ErrorMessage never fails: the payload is a plain string.
func ErrorMessage(text string) Message {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Message: text})
	return msg
}

type GetMovesPayload struct {
	Pos model.Square `json:"pos"`
}

type MovePayload struct {
	Start model.Square `json:"start"`
	End   model.Square `json:"end"`
	// Promotion is a letter or name; empty promotes to a queen.
	Promotion string `json:"promotion,omitempty"`
}

type LoadFENPayload struct {
	FEN string `json:"fen"`
}

type LoadPGNPayload struct {
	PGN string `json:"pgn"`
}

type StatePayload struct {
	State model.State `json:"state"`
}

type LastMove struct {
	Start model.Square   `json:"start"`
	End   model.Square   `json:"end"`
	Kind  model.MoveKind `json:"kind"`
	SAN   string         `json:"san"`
}

type UpdatePayload struct {
	State    model.State `json:"state"`
	LastMove *LastMove   `json:"lastMove,omitempty"`
}

// MoveOption is one legal destination as shown to a client.
type MoveOption struct {
	End  model.Square   `json:"end"`
	Kind model.MoveKind `json:"kind"`
}

type PieceMovesPayload struct {
	Pos   model.Square `json:"pos"`
	Moves []MoveOption `json:"moves"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MoveOptions projects legal moves to their destinations and kinds.
func MoveOptions(moves []model.Move) []MoveOption {
	out := make([]MoveOption, len(moves))
	for i, m := range moves {
		out[i] = MoveOption{End: m.End, Kind: m.Kind}
	}
	return out
}

func NewLastMove(m *model.Move) *LastMove {
	return &LastMove{Start: m.Start, End: m.End, Kind: m.Kind, SAN: m.SAN}
}
