package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/service"
	"github.com/yunpiaopiaoa/chess/internal/ws"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

type createRoomRequest struct {
	RoomID string `json:"roomId"`
}

// CreateRoom opens a room, under the requested id when the body names one.
func (gc *GameController) CreateRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		}
	}

	roomID := req.RoomID
	var state model.State
	if roomID == "" {
		roomID, state = gc.gameService.CreateRoom()
	} else {
		var err error
		if state, err = gc.gameService.CreateRoomWithID(roomID); err != nil {
			return sendError(c, err)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"roomId": roomID,
		"state":  state,
	})
}

func (gc *GameController) ListRooms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"rooms": gc.gameService.ListRooms()})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetState(c.Params("roomId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

// GetLegalMoves serves GET /rooms/:roomId/moves?square=e2.
func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	state, err := gc.gameService.GetState(c.Params("roomId"))
	if err != nil {
		return sendError(c, err)
	}
	from, err := model.ParseSquare(c.Query("square"), state.Rows)
	if err != nil {
		return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	moves, err := gc.gameService.LegalMoves(c.Params("roomId"), from)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(ws.PieceMovesPayload{Pos: from, Moves: ws.MoveOptions(moves)})
}

type moveRequest struct {
	Start     model.Square `json:"start"`
	End       model.Square `json:"end"`
	Promotion string       `json:"promotion"`
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	m, state, err := gc.gameService.MakeMove(c.Params("roomId"), req.Start, req.End, req.Promotion)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(ws.UpdatePayload{State: state, LastMove: ws.NewLastMove(m)})
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	state, err := gc.gameService.Undo(c.Params("roomId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(ws.UpdatePayload{State: state})
}

func (gc *GameController) GetPGN(c *fiber.Ctx) error {
	pgn, err := gc.gameService.GetPGN(c.Params("roomId"))
	if err != nil {
		return sendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
	return c.SendString(pgn)
}

type analyzeRequest struct {
	FEN string       `json:"fen"`
	Pos model.Square `json:"pos"`
}

// Analyze lists the legal moves of one square for any FEN, without a room.
func (gc *GameController) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	moves, err := gc.gameService.Analyze(req.FEN, req.Pos)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(ws.PieceMovesPayload{Pos: req.Pos, Moves: ws.MoveOptions(moves)})
}
