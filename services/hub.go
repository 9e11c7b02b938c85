package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quizroom/models"
)

const (
	defaultPingInterval     = 8 * time.Second
	defaultWatchdogInterval = 13 * time.Second
)

// Hub owns every live session: registration, liveness supervision, outbound
// delivery and teardown. Inbound envelopes are handed to the dispatch
// callback; PING/PONG never leave the hub.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	pingInterval     time.Duration
	watchdogInterval time.Duration

	dispatch     func(*Session, models.Message)
	onDisconnect func(*Session)

	cleanups sync.Map // session id -> *sync.Once
}

func NewHub() *Hub {
	return &Hub{
		sessions:         make(map[string]*Session),
		pingInterval:     defaultPingInterval,
		watchdogInterval: defaultWatchdogInterval,
	}
}

// Register allocates a session for a new connection and starts its writer,
// reader and liveness timers.
func (h *Hub) Register(conn *websocket.Conn) *Session {
	s := newSession(uuid.NewString(), conn)
	h.add(s)
	log.Printf("Session %s connected (%d active)", s.ID, h.count())

	go h.writePump(s)
	go h.readPump(s)
	go h.superviseLiveness(s)

	return s
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
}

// Session looks up a live session by id.
func (h *Hub) Session(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Broadcast enqueues msg on every session except the one with id exceptID
// (pass "" to reach everyone).
func (h *Hub) Broadcast(msg models.Message, exceptID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.sessions {
		if id == exceptID {
			continue
		}
		s.Enqueue(msg)
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Disconnect tears a session down. Cleanup runs exactly once no matter how
// many paths (read error, decode error, watchdog) race into it.
func (h *Hub) Disconnect(s *Session) {
	once, _ := h.cleanups.LoadOrStore(s.ID, &sync.Once{})
	once.(*sync.Once).Do(func() {
		log.Printf("Session %s disconnected", s.ID)
		if h.onDisconnect != nil {
			h.onDisconnect(s)
		}
		h.mu.Lock()
		delete(h.sessions, s.ID)
		h.mu.Unlock()
		s.close()
	})
}

// writePump is the single writer for one connection, draining the outbound
// queue in FIFO order.
func (h *Hub) writePump(s *Session) {
	for {
		msg, ok := s.nextMessage()
		if !ok {
			return
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Session %s: dropping unencodable %s message: %v", s.ID, msg.Type, err)
			continue
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Disconnect(s)
			return
		}
	}
}

// readPump decodes inbound frames and routes them. Any read or decode
// failure ends the session.
func (h *Hub) readPump(s *Session) {
	defer h.Disconnect(s)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Session %s read error: %v", s.ID, err)
			}
			return
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Session %s sent an undecodable frame: %v", s.ID, err)
			return
		}

		switch msg.Type {
		case models.TypePong:
			s.markAlive()
		case models.TypePing:
			s.Enqueue(models.Message{Type: models.TypePong})
		default:
			if h.dispatch != nil {
				h.dispatch(s, msg)
			}
		}
	}
}

// superviseLiveness runs the two per-session timers: the PING emitter and the
// watchdog that closes sessions lacking a recent PONG.
func (h *Hub) superviseLiveness(s *Session) {
	ping := time.NewTicker(h.pingInterval)
	watchdog := time.NewTicker(h.watchdogInterval)
	defer ping.Stop()
	defer watchdog.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ping.C:
			s.Enqueue(models.Message{Type: models.TypePing})
		case <-watchdog.C:
			if !s.clearAlive() {
				h.Disconnect(s)
				return
			}
		}
	}
}
