package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/config"
	"github.com/yunpiaopiaoa/chess/internal/controller"
	"github.com/yunpiaopiaoa/chess/internal/middleware"
	"github.com/yunpiaopiaoa/chess/internal/service"
	"github.com/yunpiaopiaoa/chess/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := newLogger(cfg)

	store, err := storage.Open(storage.Options{Dir: cfg.DataDir, InMemory: cfg.InMemory}, log)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("open archive store")
	}
	defer store.Close()

	// Initialize services
	rooms := service.NewRoomManager(log)
	gameService := service.NewGameService(rooms, store, log)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	archiveController := controller.NewArchiveController(gameService, log)
	wsController := controller.NewWebSocketController(gameService, log)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             8 * 1024 * 1024, // screenshots travel as data URLs
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.OriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	// Set up WebSocket routes
	app.Use("/ws", middleware.EnsureClientID())
	app.Get("/ws/:roomId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.OriginList(),
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsureClientID())
	controller.RegisterRoutes(api, gameController, archiveController)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Bool("inMemory", cfg.InMemory).Msg("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("listen")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogJSON {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}
