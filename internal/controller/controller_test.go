package controller

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/service"
	"github.com/yunpiaopiaoa/chess/internal/storage"
	"github.com/yunpiaopiaoa/chess/internal/ws"
)

func newTestApp(t *testing.T) (*fiber.App, *service.GameService) {
	t.Helper()
	store, err := storage.Open(storage.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	gs := service.NewGameService(service.NewRoomManager(zerolog.Nop()), store, zerolog.Nop())
	app := fiber.New()
	RegisterRoutes(app.Group("/api"),
		NewGameController(gs, zerolog.Nop()),
		NewArchiveController(gs, zerolog.Nop()))
	return app, gs
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func do(t *testing.T, app *fiber.App, method, target, body string, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, target, err)
		}
	}
	return resp
}

type roomResponse struct {
	RoomID string      `json:"roomId"`
	State  model.State `json:"state"`
}

func createRoom(t *testing.T, app *fiber.App) string {
	t.Helper()
	var created roomResponse
	resp := do(t, app, http.MethodPost, "/api/rooms", "", &created)
	if resp.StatusCode != fiber.StatusCreated || created.RoomID == "" {
		t.Fatalf("create room: %d %+v", resp.StatusCode, created)
	}
	return created.RoomID
}

func TestRoomEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	roomID := createRoom(t, app)

	var list struct {
		Rooms []string `json:"rooms"`
	}
	do(t, app, http.MethodGet, "/api/rooms", "", &list)
	if len(list.Rooms) != 1 || list.Rooms[0] != roomID {
		t.Errorf("rooms = %v", list.Rooms)
	}

	var options ws.PieceMovesPayload
	resp := do(t, app, http.MethodGet, "/api/rooms/"+roomID+"/moves?square=e2", "", &options)
	if resp.StatusCode != fiber.StatusOK || len(options.Moves) != 2 {
		t.Errorf("e2 moves: %d %+v", resp.StatusCode, options)
	}

	var update ws.UpdatePayload
	resp = do(t, app, http.MethodPost, "/api/rooms/"+roomID+"/moves",
		`{"start":{"row":6,"col":4},"end":{"row":4,"col":4}}`, &update)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("move status = %d", resp.StatusCode)
	}
	if update.LastMove == nil || update.LastMove.SAN != "e4" || update.State.Turn != model.Black {
		t.Errorf("update = %+v", update)
	}

	resp = do(t, app, http.MethodGet, "/api/rooms/"+roomID+"/pgn", "", nil)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "1. e4 *" || resp.Header.Get("Content-Type") != "application/x-chess-pgn" {
		t.Errorf("pgn = %q (%s)", body, resp.Header.Get("Content-Type"))
	}

	var undone ws.UpdatePayload
	do(t, app, http.MethodPost, "/api/rooms/"+roomID+"/undo", "", &undone)
	if undone.LastMove != nil || undone.State.FEN != model.StartFEN {
		t.Errorf("undo = %+v", undone)
	}
	var state model.State
	do(t, app, http.MethodGet, "/api/rooms/"+roomID, "", &state)
	if state.FEN != model.StartFEN || len(state.MoveHistory) != 0 {
		t.Errorf("after undo FEN = %q", state.FEN)
	}
}

func TestCreateRoomWithChosenID(t *testing.T) {
	app, _ := newTestApp(t)

	var created roomResponse
	resp := do(t, app, http.MethodPost, "/api/rooms", `{"roomId":"club"}`, &created)
	if resp.StatusCode != fiber.StatusCreated || created.RoomID != "club" || created.State.FEN != model.StartFEN {
		t.Fatalf("create: %d %+v", resp.StatusCode, created)
	}

	var body map[string]string
	resp = do(t, app, http.MethodPost, "/api/rooms", `{"roomId":"club"}`, &body)
	if resp.StatusCode != fiber.StatusConflict || body["error"] == "" {
		t.Errorf("duplicate: %d %v", resp.StatusCode, body)
	}

	resp = do(t, app, http.MethodGet, "/api/rooms/club", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("get status = %d", resp.StatusCode)
	}
}

func TestErrorStatuses(t *testing.T) {
	app, _ := newTestApp(t)
	roomID := createRoom(t, app)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"unknown room", http.MethodGet, "/api/rooms/nope", "", fiber.StatusNotFound},
		{"illegal move", http.MethodPost, "/api/rooms/" + roomID + "/moves",
			`{"start":{"row":6,"col":4},"end":{"row":3,"col":4}}`, fiber.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, "/api/rooms/" + roomID + "/moves", `{"start":`, fiber.StatusBadRequest},
		{"nothing to undo", http.MethodPost, "/api/rooms/" + roomID + "/undo", "", fiber.StatusUnprocessableEntity},
		{"bad square", http.MethodGet, "/api/rooms/" + roomID + "/moves?square=z9", "", fiber.StatusBadRequest},
		{"bad fen", http.MethodPost, "/api/analyze", `{"fen":"8/8 w","pos":{"row":0,"col":0}}`, fiber.StatusBadRequest},
		{"missing archive", http.MethodGet, "/api/archives/ghost", "", fiber.StatusNotFound},
		{"bad archive name", http.MethodPost, "/api/rooms/" + roomID + "/archive", `{"filename":"a b"}`, fiber.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]string
			resp := do(t, app, tc.method, tc.target, tc.body, &body)
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d (%v)", resp.StatusCode, tc.want, body)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	app, _ := newTestApp(t)
	var options ws.PieceMovesPayload
	resp := do(t, app, http.MethodPost, "/api/analyze",
		`{"fen":"4k3/8/8/8/8/8/8/R3K2R w - - 0 1","pos":{"row":7,"col":4}}`, &options)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	castles := 0
	for _, m := range options.Moves {
		if m.Kind == model.Castling {
			castles++
		}
	}
	if castles != 2 {
		t.Errorf("king options = %+v, want both castles", options.Moves)
	}
}

func TestArchiveEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	roomID := createRoom(t, app)
	do(t, app, http.MethodPost, "/api/rooms/"+roomID+"/moves",
		`{"start":{"row":6,"col":4},"end":{"row":4,"col":4}}`, nil)

	png := "\x89PNG\r\n\x1a\n"
	shot := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(png))
	var saved map[string]string
	resp := do(t, app, http.MethodPost, "/api/rooms/"+roomID+"/archive",
		`{"filename":"opening","screenshot":"`+shot+`"}`, &saved)
	if resp.StatusCode != fiber.StatusCreated || saved["name"] != "opening" {
		t.Fatalf("save: %d %v", resp.StatusCode, saved)
	}

	var list struct {
		Games []string `json:"games"`
	}
	do(t, app, http.MethodGet, "/api/archives", "", &list)
	if len(list.Games) != 1 || list.Games[0] != "opening" {
		t.Errorf("games = %v", list.Games)
	}

	var archive storage.Archive
	do(t, app, http.MethodGet, "/api/archives/opening", "", &archive)
	if archive.RoomID != roomID || archive.PGN != "1. e4 *" {
		t.Errorf("archive = %+v", archive)
	}

	resp = do(t, app, http.MethodGet, "/api/archives/opening/preview", "", nil)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != png || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("preview = %q (%s)", body, resp.Header.Get("Content-Type"))
	}

	var restored roomResponse
	resp = do(t, app, http.MethodPost, "/api/archives/opening/restore", `{"roomId":"replay"}`, &restored)
	if resp.StatusCode != fiber.StatusOK || restored.RoomID != "replay" || len(restored.State.MoveHistory) != 1 {
		t.Errorf("restore: %d %+v", resp.StatusCode, restored)
	}

	resp = do(t, app, http.MethodDelete, "/api/archives/opening", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, app, http.MethodDelete, "/api/archives/opening", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
}
