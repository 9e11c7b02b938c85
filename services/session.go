package services

import (
	"sync"

	"github.com/gorilla/websocket"

	"quizroom/models"
)

// Session is the live handle for one websocket connection. Outbound messages
// go through an unbounded FIFO queue drained by a single writer, so no two
// goroutines ever write to the connection concurrently. The queue being
// unbounded is a documented resource risk: a slow client can grow it without
// limit.
type Session struct {
	ID string

	conn *websocket.Conn

	mu            sync.Mutex
	queue         []models.Message
	closed        bool
	alive         bool
	participantID string
	roomID        int

	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		alive:  true,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue appends a message to the outbound queue. It never blocks; messages
// enqueued after close are dropped.
func (s *Session) Enqueue(msg models.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// nextMessage blocks until a message is available or the session closes.
// Queued messages are still drained after close.
func (s *Session) nextMessage() (models.Message, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			msg := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return msg, true
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return models.Message{}, false
		}

		select {
		case <-s.notify:
		case <-s.done:
		}
	}
}

// close marks the session dead, wakes the writer and closes the connection.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) markAlive() {
	s.mu.Lock()
	s.alive = true
	s.mu.Unlock()
}

// clearAlive returns the current liveness flag and resets it, so only an
// inbound PONG before the next check can keep the session open.
func (s *Session) clearAlive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.alive
	s.alive = false
	return was
}

func (s *Session) bindParticipant(id string) {
	s.mu.Lock()
	s.participantID = id
	s.mu.Unlock()
}

// ParticipantID returns the bound participant id, or "" before registration.
func (s *Session) ParticipantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantID
}

func (s *Session) setRoom(id int) {
	s.mu.Lock()
	s.roomID = id
	s.mu.Unlock()
}

// RoomID returns the bound room id, or 0 when the session is in no room.
func (s *Session) RoomID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}
