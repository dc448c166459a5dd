package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yunpiaopiaoa/chess/internal/model"
	"github.com/yunpiaopiaoa/chess/internal/storage"
)

var ErrInvalidScreenshot = errors.New("invalid screenshot")

type GameService struct {
	rooms *RoomManager
	store *storage.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewGameService(rooms *RoomManager, store *storage.Store, log zerolog.Logger) *GameService {
	return &GameService{
		rooms: rooms,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (gs *GameService) CreateRoom() (string, model.State) {
	room := gs.rooms.Create()
	return room.ID, room.State()
}

// CreateRoomWithID opens a room under a caller-chosen id.
func (gs *GameService) CreateRoomWithID(id string) (model.State, error) {
	room, err := gs.rooms.CreateWithID(id)
	if err != nil {
		return model.State{}, err
	}
	return room.State(), nil
}

func (gs *GameService) ListRooms() []string {
	return gs.rooms.IDs()
}

func (gs *GameService) GetState(roomID string) (model.State, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return model.State{}, err
	}
	return room.State(), nil
}

func (gs *GameService) GetPGN(roomID string) (string, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return "", err
	}
	return room.PGN(), nil
}

func (gs *GameService) LegalMoves(roomID string, from model.Square) ([]model.Move, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}
	return room.LegalMoves(from), nil
}

func (gs *GameService) MakeMove(roomID string, start, end model.Square, promotion string) (*model.Move, model.State, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return nil, model.State{}, err
	}
	pt, err := model.ParsePromotion(promotion)
	if err != nil {
		return nil, model.State{}, err
	}
	return room.Move(start, end, pt)
}

func (gs *GameService) Undo(roomID string) (model.State, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return model.State{}, err
	}
	return room.Undo()
}

// Analyze lists the legal moves of one square in an arbitrary position without a room.
func (gs *GameService) Analyze(fen string, from model.Square) ([]model.Move, error) {
	return model.AnalyzeFEN(fen, from)
}

// Connect attaches a client connection to a room, creating the room on first use.
func (gs *GameService) Connect(roomID, clientID string, conn Conn) (*Room, error) {
	room := gs.rooms.GetOrCreate(roomID)
	if err := room.Join(clientID, conn); err != nil {
		room.Leave(clientID, conn)
		return nil, fmt.Errorf("send initial state: %w", err)
	}
	return room, nil
}

// SaveArchive stores the room's current game under name, or under the room id when name
// is empty. screenshot is an optional base64 data URL of a PNG.
func (gs *GameService) SaveArchive(roomID, name, screenshot string) (string, error) {
	room, err := gs.rooms.Get(roomID)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = roomID
	}
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}

	var preview []byte
	if screenshot != "" {
		preview, err = decodeDataURL(screenshot)
		if err != nil {
			// The game is still saved; only the thumbnail is lost.
			gs.log.Warn().Err(err).Str("archive", name).Msg("discarding screenshot")
		}
	}

	state := room.State()
	raw, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	archive := &storage.Archive{
		Name:    name,
		RoomID:  roomID,
		SavedAt: gs.now().UTC(),
		PGN:     state.PGN,
		State:   raw,
	}
	if err := gs.store.Save(archive, preview); err != nil {
		return "", err
	}
	gs.log.Info().Str("archive", name).Str("room", roomID).Bool("preview", preview != nil).Msg("game archived")
	return name, nil
}

func (gs *GameService) ListArchives() ([]string, error) {
	return gs.store.List()
}

func (gs *GameService) LoadArchive(name string) (*storage.Archive, error) {
	return gs.store.Load(name)
}

func (gs *GameService) ArchivePreview(name string) ([]byte, error) {
	return gs.store.Preview(name)
}

func (gs *GameService) DeleteArchive(name string) error {
	if err := gs.store.Delete(name); err != nil {
		return err
	}
	gs.log.Info().Str("archive", name).Msg("archive deleted")
	return nil
}

// RestoreArchive replays an archive's PGN into roomID, or into a new room when roomID is
// empty. Clients in the room receive the restored game. No room is created or changed when
// the PGN does not replay.
func (gs *GameService) RestoreArchive(name, roomID string) (string, model.State, error) {
	archive, err := gs.store.Load(name)
	if err != nil {
		return "", model.State{}, err
	}
	if err := model.NewGame().LoadPGN(archive.PGN); err != nil {
		return "", model.State{}, fmt.Errorf("restore %s: %w", name, err)
	}
	var room *Room
	if roomID == "" {
		room = gs.rooms.Create()
	} else {
		room = gs.rooms.GetOrCreate(roomID)
	}
	state, err := room.LoadPGN(archive.PGN)
	if err != nil {
		return "", model.State{}, fmt.Errorf("restore %s: %w", name, err)
	}
	gs.log.Info().Str("archive", name).Str("room", room.ID).Msg("archive restored")
	return room.ID, state, nil
}

// decodeDataURL accepts "data:image/png;base64,...." or bare base64.
func decodeDataURL(s string) ([]byte, error) {
	encoded := s
	if strings.HasPrefix(s, "data:") {
		_, after, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("%w: missing data", ErrInvalidScreenshot)
		}
		encoded = after
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScreenshot, err)
	}
	return data, nil
}
