package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

type RoomManager struct {
	rooms map[string]*Room
	mu    sync.RWMutex
	log   zerolog.Logger
}

func NewRoomManager(log zerolog.Logger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// Create opens a room under a fresh id.
func (rm *RoomManager) Create() *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	id := uuid.New().String()
	room := newRoom(id, rm.log)
	rm.rooms[id] = room
	rm.log.Info().Str("room", id).Msg("room created")
	return room
}

func (rm *RoomManager) CreateWithID(id string) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.rooms[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, id)
	}
	room := newRoom(id, rm.log)
	rm.rooms[id] = room
	rm.log.Info().Str("room", id).Msg("room created")
	return room, nil
}

func (rm *RoomManager) Get(id string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return room, nil
}

// GetOrCreate returns the room with id, opening it on first use.
func (rm *RoomManager) GetOrCreate(id string) *Room {
	if room, err := rm.Get(id); err == nil {
		return room
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	// Another caller may have created it between the two locks.
	if room, exists := rm.rooms[id]; exists {
		return room
	}
	room := newRoom(id, rm.log)
	rm.rooms[id] = room
	rm.log.Info().Str("room", id).Msg("room created")
	return room
}

// IDs lists open rooms in lexical order.
func (rm *RoomManager) IDs() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	ids := make([]string, 0, len(rm.rooms))
	for id := range rm.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
