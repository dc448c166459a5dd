package controller

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the REST API on api, normally the /api group.
func RegisterRoutes(api fiber.Router, gc *GameController, ac *ArchiveController) {
	rooms := api.Group("/rooms")
	rooms.Post("/", gc.CreateRoom)
	rooms.Get("/", gc.ListRooms)
	rooms.Get("/:roomId", gc.GetGameState)
	rooms.Get("/:roomId/moves", gc.GetLegalMoves)
	rooms.Post("/:roomId/moves", gc.MakeMove)
	rooms.Post("/:roomId/undo", gc.Undo)
	rooms.Get("/:roomId/pgn", gc.GetPGN)
	rooms.Post("/:roomId/archive", ac.Save)

	api.Post("/analyze", gc.Analyze)

	archives := api.Group("/archives")
	archives.Get("/", ac.List)
	archives.Get("/:name", ac.Load)
	archives.Get("/:name/preview", ac.Preview)
	archives.Delete("/:name", ac.Delete)
	archives.Post("/:name/restore", ac.Restore)
}
