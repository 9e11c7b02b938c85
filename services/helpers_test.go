package services

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizroom/models"
	"quizroom/store"
)

func newTestStores(t *testing.T) (*store.Participants, *store.Rooms, *store.TopScores) {
	t.Helper()

	rs := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: rs.Addr()})
	t.Cleanup(func() { rc.Close() })

	kv := store.NewRedis(rc)
	return store.NewParticipants(kv), store.NewRooms(kv), store.NewTopScores(kv)
}

// drain empties a session's outbound queue without blocking.
func drain(s *Session) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

func messageTypes(msgs []models.Message) []models.MessageType {
	types := make([]models.MessageType, 0, len(msgs))
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	return types
}

func findMessage(t *testing.T, msgs []models.Message, typ models.MessageType) models.Message {
	t.Helper()
	for _, m := range msgs {
		if m.Type == typ {
			return m
		}
	}
	t.Fatalf("no %s message in %v", typ, messageTypes(msgs))
	return models.Message{}
}

func countMessages(msgs []models.Message, typ models.MessageType) int {
	n := 0
	for _, m := range msgs {
		if m.Type == typ {
			n++
		}
	}
	return n
}

// inbound builds a message the way the read pump would decode it off the wire.
func inbound(t *testing.T, typ models.MessageType, data any) models.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return models.Message{Type: typ, Data: json.RawMessage(raw)}
}

// testCatalog builds a catalog with the given number of questions per
// chapter, starting at chapter 1. The correct option is always index 0.
func testCatalog(perChapter ...int) *Catalog {
	var questions []models.Question
	id := 0
	for i, n := range perChapter {
		chapter := i + 1
		for q := 0; q < n; q++ {
			id++
			questions = append(questions, models.Question{
				ID:      id,
				Text:    "question",
				Options: []string{"right", "wrong", "wrong"},
				Answer:  0,
				Chapter: chapter,
			})
		}
	}
	return NewCatalog(questions)
}
