package model

import "errors"

// Expected rule violations. Operations wrap these with context, so test with errors.Is.
var (
	ErrIllegalMove         = errors.New("illegal move")
	ErrGameAlreadyOver     = errors.New("game already over")
	ErrNoMoveToUndo        = errors.New("no move to undo")
	ErrUnparseableNotation = errors.New("unparseable notation")
	ErrInvalidFEN          = errors.New("invalid fen")
)
