package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/service"
)

type ArchiveController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewArchiveController(gameService *service.GameService, log zerolog.Logger) *ArchiveController {
	return &ArchiveController{gameService: gameService, log: log}
}

type saveRequest struct {
	Filename   string `json:"filename"`
	Screenshot string `json:"screenshot"`
}

// Save archives the game of :roomId. The body is optional.
func (ac *ArchiveController) Save(c *fiber.Ctx) error {
	var req saveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		}
	}
	name, err := ac.gameService.SaveArchive(c.Params("roomId"), req.Filename, req.Screenshot)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"name":    name,
		"message": "game saved as " + name,
	})
}

func (ac *ArchiveController) List(c *fiber.Ctx) error {
	names, err := ac.gameService.ListArchives()
	if err != nil {
		ac.log.Error().Err(err).Msg("list archives")
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"games": names})
}

func (ac *ArchiveController) Load(c *fiber.Ctx) error {
	archive, err := ac.gameService.LoadArchive(c.Params("name"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(archive)
}

func (ac *ArchiveController) Preview(c *fiber.Ctx) error {
	png, err := ac.gameService.ArchivePreview(c.Params("name"))
	if err != nil {
		return sendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (ac *ArchiveController) Delete(c *fiber.Ctx) error {
	if err := ac.gameService.DeleteArchive(c.Params("name")); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"message": "archive deleted"})
}

type restoreRequest struct {
	RoomID string `json:"roomId"`
}

// Restore replays an archive into the requested room, or a new one.
func (ac *ArchiveController) Restore(c *fiber.Ctx) error {
	var req restoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		}
	}
	roomID, state, err := ac.gameService.RestoreArchive(c.Params("name"), req.RoomID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"roomId": roomID,
		"state":  state,
	})
}
