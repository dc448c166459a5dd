package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/middleware"
	"github.com/yunpiaopiaoa/chess/internal/service"
	"github.com/yunpiaopiaoa/chess/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	roomID := c.Params("roomId")
	clientID, _ := c.Locals(middleware.LocalClientID).(string)
	log := wsc.log.With().Str("room", roomID).Str("client", clientID).Logger()

	room, err := wsc.gameService.Connect(roomID, clientID, c)
	if err != nil {
		log.Warn().Err(err).Msg("connect failed")
		c.Close()
		return
	}
	defer room.Leave(clientID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			room.Send(clientID, ws.ErrorMessage("malformed message"))
			continue
		}
		if err := wsc.handleMessage(room, clientID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			room.Send(clientID, ws.ErrorMessage(err.Error()))
		}
	}
}

// handleMessage applies one client message to the room. State changes are broadcast by the
// room itself; only piece_moves is answered to the sender alone.
func (wsc *WebSocketController) handleMessage(room *service.Room, clientID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeGetMoves:
		var p ws.GetMovesPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypePieceMoves, ws.PieceMovesPayload{
			Pos:   p.Pos,
			Moves: ws.MoveOptions(room.LegalMoves(p.Pos)),
		})
		if err != nil {
			return err
		}
		room.Send(clientID, reply)
		return nil

	case ws.MessageTypeMove:
		var p ws.MovePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, _, err := wsc.gameService.MakeMove(room.ID, p.Start, p.End, p.Promotion)
		return err

	case ws.MessageTypeUndo:
		_, err := room.Undo()
		return err

	case ws.MessageTypeReset:
		room.Reset()
		return nil

	case ws.MessageTypeLoadFEN:
		var p ws.LoadFENPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, err := room.LoadFEN(p.FEN)
		return err

	case ws.MessageTypeLoadPGN:
		var p ws.LoadPGNPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, err := room.LoadPGN(p.PGN)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func decodePayload(msg ws.Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: %w", msg.Type, err)
	}
	return nil
}
