package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"quizroom/models"
	"quizroom/store"
)

// ErrRoomNotFound is returned when an operation names a room that is not
// persisted. Callers translate it into a silent no-op towards the client.
var ErrRoomNotFound = errors.New("room not found")

const roomIDAttempts = 5

// RoomService is the storage side of the room directory: CRUD and membership
// over the key-value gateway. All mutations are read-modify-write with no
// compare-and-swap; concurrent mutations of one room follow last-write-wins.
type RoomService struct {
	rooms        *store.Rooms
	participants *store.Participants
}

func NewRoomService(rooms *store.Rooms, participants *store.Participants) *RoomService {
	return &RoomService{rooms: rooms, participants: participants}
}

// Create persists a new room whose only member is its creator.
func (s *RoomService) Create(ctx context.Context, name, creatorID string) (models.Room, error) {
	id, err := s.newRoomID(ctx)
	if err != nil {
		return models.Room{}, err
	}

	room := models.Room{
		ID:           id,
		Name:         name,
		CreatorID:    creatorID,
		Participants: []string{creatorID},
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// newRoomID draws random ids until one is unused, so a collision cannot
// silently overwrite a live room.
func (s *RoomService) newRoomID(ctx context.Context) (int, error) {
	for i := 0; i < roomIDAttempts; i++ {
		id := int(rand.Int31())
		if id == 0 {
			continue
		}
		taken, err := s.rooms.Exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("could not allocate a free room id after %d attempts", roomIDAttempts)
}

func (s *RoomService) Find(ctx context.Context, id int) (models.Room, error) {
	room, err := s.rooms.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// Join appends a participant to the member list, if not already present.
func (s *RoomService) Join(ctx context.Context, roomID int, participantID string) (models.Room, error) {
	room, err := s.Find(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if !room.HasParticipant(participantID) {
		room.Participants = append(room.Participants, participantID)
		if err := s.rooms.Save(ctx, room); err != nil {
			return models.Room{}, err
		}
	}
	return room, nil
}

// Start flags the room as started so it no longer shows up in listings.
func (s *RoomService) Start(ctx context.Context, roomID int) (models.Room, error) {
	room, err := s.Find(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	room.HasStarted = true
	if err := s.rooms.Save(ctx, room); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// RemoveMember drops a participant from the member list, pruning any stray
// empty entries along the way, and persists the result.
func (s *RoomService) RemoveMember(ctx context.Context, roomID int, participantID string) (models.Room, error) {
	room, err := s.Find(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}

	kept := room.Participants[:0]
	for _, p := range room.Participants {
		if p != "" && p != participantID {
			kept = append(kept, p)
		}
	}
	room.Participants = kept

	if err := s.rooms.Save(ctx, room); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, roomID int) error {
	return s.rooms.Delete(ctx, roomID)
}

// ListOpen returns every room that has not started yet.
func (s *RoomService) ListOpen(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.All(ctx)
	if err != nil {
		return nil, err
	}
	open := rooms[:0]
	for _, r := range rooms {
		if !r.HasStarted {
			open = append(open, r)
		}
	}
	return open, nil
}

// Resolve maps a room's member ids to participant records, skipping any that
// cannot be loaded.
func (s *RoomService) Resolve(ctx context.Context, room models.Room) []models.Participant {
	resolved := make([]models.Participant, 0, len(room.Participants))
	for _, id := range room.Participants {
		if id == "" {
			continue
		}
		p, err := s.participants.Get(ctx, id)
		if err != nil {
			continue
		}
		resolved = append(resolved, p)
	}
	return resolved
}
