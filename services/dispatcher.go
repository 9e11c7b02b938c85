package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"quizroom/models"
	"quizroom/store"
)

// Dispatcher routes inbound envelopes for every session and implements the
// operation flows around the room directory, the game engines and the
// leaderboard. It owns the registry of running games.
type Dispatcher struct {
	hub          *Hub
	rooms        *RoomService
	participants *store.Participants
	catalog      *Catalog
	leaderboard  *Leaderboard

	tickInterval time.Duration

	mu    sync.RWMutex
	games map[int]*Game
}

func NewDispatcher(hub *Hub, rooms *RoomService, participants *store.Participants, catalog *Catalog, leaderboard *Leaderboard) *Dispatcher {
	d := &Dispatcher{
		hub:          hub,
		rooms:        rooms,
		participants: participants,
		catalog:      catalog,
		leaderboard:  leaderboard,
		tickInterval: defaultTickInterval,
		games:        make(map[int]*Game),
	}
	hub.dispatch = d.Dispatch
	hub.onDisconnect = d.HandleDisconnect
	return d
}

// Dispatch routes one inbound message. Until a session has registered a
// participant, everything except NEW_USER is dropped silently.
func (d *Dispatcher) Dispatch(s *Session, msg models.Message) {
	if s.ParticipantID() == "" && msg.Type != models.TypeNewUser {
		return
	}

	switch msg.Type {
	case models.TypeNewUser:
		var name string
		if err := msg.DecodeData(&name); err != nil {
			return
		}
		d.handleNewUser(s, name)

	case models.TypeCreateRoom:
		var name string
		if err := msg.DecodeData(&name); err != nil {
			return
		}
		d.handleCreateRoom(s, name)

	case models.TypeJoinRoom:
		var roomID int
		if err := msg.DecodeData(&roomID); err != nil {
			return
		}
		d.handleJoinRoom(s, roomID)

	case models.TypeGetRooms:
		d.handleGetRooms(s)

	case models.TypeStart:
		d.handleStart(s)

	case models.TypeAnswer:
		var sub models.AnswerSubmission
		if err := msg.DecodeData(&sub); err != nil {
			return
		}
		d.handleAnswer(s, sub)

	case models.TypeTopScore:
		s.Enqueue(models.Message{Type: models.TypeTopScore, Data: d.leaderboard.TopScores()})

	case models.TypeLeaveRoom:
		d.leaveOrDelete(s, false)

	case models.TypeDeleteRoom:
		d.leaveOrDelete(s, true)

	default:
		log.Printf("Session %s sent unhandled message type %s", s.ID, msg.Type)
	}
}

// HandleDisconnect is the cleanup path for a dying session: leave or delete
// its room, then remove the participant record. Every step is best-effort.
func (d *Dispatcher) HandleDisconnect(s *Session) {
	d.leaveOrDelete(s, true)

	if pid := s.ParticipantID(); pid != "" {
		if err := d.participants.Delete(context.Background(), pid); err != nil {
			log.Printf("Could not remove participant %s: %v", pid, err)
		}
	}
}

func (d *Dispatcher) handleNewUser(s *Session, name string) {
	p := models.Participant{ID: s.ID, Name: name}
	if err := d.participants.Save(context.Background(), p); err != nil {
		log.Printf("Could not persist participant %s: %v", p.ID, err)
		return
	}

	s.bindParticipant(p.ID)
	s.Enqueue(models.Message{Type: models.TypeUserCreated, Data: p})
	log.Printf("Participant %q registered on session %s", name, s.ID)
}

func (d *Dispatcher) handleCreateRoom(s *Session, name string) {
	ctx := context.Background()

	room, err := d.rooms.Create(ctx, name, s.ParticipantID())
	if err != nil {
		log.Printf("Could not create room %q: %v", name, err)
		return
	}
	s.setRoom(room.ID)

	details := d.roomDetails(ctx, room, s.ParticipantID())
	s.Enqueue(models.Message{Type: models.TypeRoomCreated, Data: details})

	// Other sessions learn about the new room with the creator flag unset.
	details.IsCreator = false
	d.hub.Broadcast(models.Message{Type: models.TypeNewRoom, Data: details}, s.ID)
	log.Printf("Room %d (%q) created by %s", room.ID, room.Name, room.CreatorID)
}

func (d *Dispatcher) handleJoinRoom(s *Session, roomID int) {
	ctx := context.Background()

	room, err := d.rooms.Join(ctx, roomID, s.ParticipantID())
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Printf("Could not join room %d: %v", roomID, err)
		}
		return
	}
	s.setRoom(room.ID)

	details := d.roomDetails(ctx, room, s.ParticipantID())
	s.Enqueue(models.Message{Type: models.TypeRoomJoined, Data: details})

	joiner, err := d.participants.Get(ctx, s.ParticipantID())
	if err != nil {
		return
	}
	d.notifyMembers(room, s.ParticipantID(), models.Message{Type: models.TypeUserJoin, Data: joiner})
}

func (d *Dispatcher) handleGetRooms(s *Session) {
	ctx := context.Background()

	rooms, err := d.rooms.ListOpen(ctx)
	if err != nil {
		log.Printf("Could not list rooms: %v", err)
		return
	}

	list := make([]models.RoomDetails, 0, len(rooms))
	for _, room := range rooms {
		list = append(list, d.roomDetails(ctx, room, s.ParticipantID()))
	}
	s.Enqueue(models.Message{Type: models.TypeGetRooms, Data: list})
}

// handleStart flags the room started and spins up its game engine, bound to
// the sessions of every current member.
func (d *Dispatcher) handleStart(s *Session) {
	roomID := s.RoomID()
	if roomID == 0 {
		return
	}
	ctx := context.Background()

	room, err := d.rooms.Start(ctx, roomID)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Printf("Could not start room %d: %v", roomID, err)
		}
		return
	}

	sessions := make([]*Session, 0, len(room.Participants))
	for _, pid := range room.Participants {
		if member, ok := d.hub.Session(pid); ok {
			sessions = append(sessions, member)
		}
	}

	game := NewGame(GameConfig{
		Room:         room,
		Catalog:      d.catalog,
		Leaderboard:  d.leaderboard,
		Participants: d.rooms.Resolve(ctx, room),
		Sessions:     sessions,
		TickInterval: d.tickInterval,
		OnEnd:        d.gameEnded,
	})

	d.mu.Lock()
	d.games[roomID] = game
	d.mu.Unlock()

	game.Start()
}

func (d *Dispatcher) handleAnswer(s *Session, sub models.AnswerSubmission) {
	if game, ok := d.game(sub.RoomID); ok {
		game.SubmitAnswer(sub.ParticipantID, sub.Answer, s)
	}
}

// leaveOrDelete implements both LEAVE_ROOM and DELETE_ROOM, plus the
// disconnect path. A room left with 0 or 1 members is always deleted.
func (d *Dispatcher) leaveOrDelete(s *Session, asDelete bool) {
	roomID := s.RoomID()
	if roomID == 0 {
		return
	}
	ctx := context.Background()
	requester := s.ParticipantID()

	room, err := d.rooms.Find(ctx, roomID)
	if err != nil {
		s.setRoom(0)
		return
	}

	if asDelete && !room.HasStarted && room.CreatorID == requester {
		d.deleteRoom(ctx, room)
		s.setRoom(0)
		return
	}

	room, err = d.rooms.RemoveMember(ctx, roomID, requester)
	if err != nil {
		s.setRoom(0)
		return
	}

	if len(room.Participants) <= 1 {
		d.deleteRoom(ctx, room)
	} else if leaver, err := d.participants.Get(ctx, requester); err == nil {
		d.notifyMembers(room, requester, models.Message{Type: models.TypeUserLeft, Data: leaver})
	}
	s.setRoom(0)
}

// deleteRoom removes the record, tells every registered session and disposes
// of any running engine.
func (d *Dispatcher) deleteRoom(ctx context.Context, room models.Room) {
	log.Printf("Deleting room %d (%q)", room.ID, room.Name)
	d.hub.Broadcast(models.Message{Type: models.TypeDeleteRoom, Data: room.ID}, "")

	if err := d.rooms.Delete(ctx, room.ID); err != nil {
		log.Printf("Could not delete room %d: %v", room.ID, err)
	}

	d.mu.Lock()
	game, ok := d.games[room.ID]
	delete(d.games, room.ID)
	d.mu.Unlock()
	if ok {
		game.Stop()
	}
}

// gameEnded is the engine's termination signal: drop it from the registry
// and delete the finished room.
func (d *Dispatcher) gameEnded(roomID int) {
	d.mu.Lock()
	delete(d.games, roomID)
	d.mu.Unlock()

	if err := d.rooms.Delete(context.Background(), roomID); err != nil {
		log.Printf("Could not delete finished room %d: %v", roomID, err)
	}
}

func (d *Dispatcher) game(roomID int) (*Game, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.games[roomID]
	return g, ok
}

// notifyMembers enqueues msg on every member's session except the actor's.
func (d *Dispatcher) notifyMembers(room models.Room, exceptID string, msg models.Message) {
	for _, pid := range room.Participants {
		if pid == exceptID {
			continue
		}
		if member, ok := d.hub.Session(pid); ok {
			member.Enqueue(msg)
		}
	}
}

func (d *Dispatcher) roomDetails(ctx context.Context, room models.Room, viewerID string) models.RoomDetails {
	return models.RoomDetails{
		ID:           room.ID,
		Name:         room.Name,
		Participants: d.rooms.Resolve(ctx, room),
		IsCreator:    room.CreatorID == viewerID,
		HasStarted:   room.HasStarted,
	}
}
