package service

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/ws"
)

// Conn is the write side of a client connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Room owns one game and the connections watching it. Every read and write of the game,
// and every write to a connection, happens under mu, so updates reach each client in the
// order they were applied.
type Room struct {
	ID string

	mu          sync.Mutex
	game        *model.Game
	connections map[string]Conn
	log         zerolog.Logger
}

func newRoom(id string, log zerolog.Logger) *Room {
	return &Room{
		ID:          id,
		game:        model.NewGame(),
		connections: make(map[string]Conn),
		log:         log.With().Str("room", id).Logger(),
	}
}

// Join registers conn under clientID and sends it the current state. A second connection
// with the same client id replaces the first.
func (r *Room) Join(clientID string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[clientID] = conn
	r.log.Info().Str("client", clientID).Int("connections", len(r.connections)).Msg("client joined")

	msg, err := ws.NewMessage(ws.MessageTypeInit, ws.StatePayload{State: r.game.State()})
	if err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// Leave drops conn if it is still the one registered for clientID.
func (r *Room) Leave(clientID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connections[clientID] != conn {
		return
	}
	delete(r.connections, clientID)
	r.log.Info().Str("client", clientID).Int("connections", len(r.connections)).Msg("client left")
}

func (r *Room) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connections)
}

func (r *Room) State() model.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.State()
}

func (r *Room) PGN() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.PGN()
}

func (r *Room) LegalMoves(from model.Square) []model.Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.LegalMovesFrom(from)
}

// Move plays a move and broadcasts the new state with the move attached.
func (r *Room) Move(start, end model.Square, promotion model.PieceType) (*model.Move, model.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.game.MakeMove(start, end, promotion)
	if err != nil {
		return nil, model.State{}, err
	}
	state := r.game.State()
	r.log.Debug().Str("san", m.SAN).Str("status", state.Status.String()).Msg("move played")
	r.broadcast(ws.MessageTypeUpdate, ws.UpdatePayload{State: state, LastMove: ws.NewLastMove(m)})
	return m, state, nil
}

func (r *Room) Undo() (model.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.game.UndoMove()
	if err != nil {
		return model.State{}, err
	}
	state := r.game.State()
	r.log.Debug().Str("san", m.SAN).Msg("move undone")
	r.broadcast(ws.MessageTypeUpdate, ws.UpdatePayload{State: state})
	return state, nil
}

// Reset replaces the game with a fresh one.
func (r *Room) Reset() model.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.game = model.NewGame()
	state := r.game.State()
	r.log.Info().Msg("game reset")
	r.broadcast(ws.MessageTypeInit, ws.StatePayload{State: state})
	return state
}

func (r *Room) LoadFEN(fen string) (model.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.game.LoadFEN(fen); err != nil {
		return model.State{}, err
	}
	state := r.game.State()
	r.log.Info().Str("fen", fen).Msg("position loaded")
	r.broadcast(ws.MessageTypeInit, ws.StatePayload{State: state})
	return state, nil
}

func (r *Room) LoadPGN(pgn string) (model.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.game.LoadPGN(pgn); err != nil {
		return model.State{}, err
	}
	state := r.game.State()
	r.log.Info().Int("plies", len(state.MoveHistory)).Msg("pgn loaded")
	r.broadcast(ws.MessageTypeInit, ws.StatePayload{State: state})
	return state, nil
}

// Send writes msg to a single client.
func (r *Room) Send(clientID string, msg ws.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[clientID]
	if !ok {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		r.log.Warn().Err(err).Str("client", clientID).Msg("write failed, dropping connection")
		delete(r.connections, clientID)
	}
}

// broadcast must be called with mu held. Connections that fail a write are dropped.
func (r *Room) broadcast(t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		r.log.Error().Err(err).Str("type", string(t)).Msg("marshal broadcast")
		return
	}
	for clientID, conn := range r.connections {
		if err := conn.WriteJSON(msg); err != nil {
			r.log.Warn().Err(err).Str("client", clientID).Msg("write failed, dropping connection")
			delete(r.connections, clientID)
		}
	}
}
