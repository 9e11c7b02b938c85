package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quizroom/models"
)

func TestSessionQueueIsFIFO(t *testing.T) {
	s := newSession("s1", nil)
	s.Enqueue(models.Message{Type: models.TypeStart})
	s.Enqueue(models.Message{Type: models.TypeNewQuestion})
	s.Enqueue(models.Message{Type: models.TypeEnd})

	require.Equal(t,
		[]models.MessageType{models.TypeStart, models.TypeNewQuestion, models.TypeEnd},
		messageTypes(drain(s)))
}

func TestSessionDrainsQueueAfterClose(t *testing.T) {
	s := newSession("s1", nil)
	s.Enqueue(models.Message{Type: models.TypeEnd})
	s.close()

	msg, ok := s.nextMessage()
	require.True(t, ok, "queued messages survive close")
	require.Equal(t, models.TypeEnd, msg.Type)

	_, ok = s.nextMessage()
	require.False(t, ok)

	// enqueue after close is dropped, nextMessage does not block
	s.Enqueue(models.Message{Type: models.TypeStart})
	done := make(chan struct{})
	go func() {
		_, ok := s.nextMessage()
		require.False(t, ok)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nextMessage blocked on a closed session")
	}
}

func TestSessionLivenessFlag(t *testing.T) {
	s := newSession("s1", nil)
	require.True(t, s.clearAlive(), "sessions start out alive")
	require.False(t, s.clearAlive(), "flag stays down until a pong")

	s.markAlive()
	require.True(t, s.clearAlive())
}
