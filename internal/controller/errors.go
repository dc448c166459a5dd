package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/service"
	"github.com/yunpiaopiaoa/chess/internal/storage"
)

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, storage.ErrArchiveNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrRoomExists):
		return fiber.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, storage.ErrInvalidArchiveName),
		errors.Is(err, model.ErrInvalidFEN):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrGameAlreadyOver),
		errors.Is(err, model.ErrNoMoveToUndo),
		errors.Is(err, model.ErrUnparseableNotation):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// sendError writes {"error": ...}. Internal errors are not echoed to the client.
func sendError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
