package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizroom/models"
	"quizroom/store"
)

func newKV(t *testing.T) *store.Redis {
	t.Helper()

	rs := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: rs.Addr()})
	t.Cleanup(func() { rc.Close() })

	require.NoError(t, rc.Ping(context.Background()).Err(), "should be able to ping redis")
	return store.NewRedis(rc)
}

func TestRedisKV(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k1", []byte(`"v1"`)))

	got, err := kv.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte(`"v1"`), got)

	exists, err := kv.Exists(ctx, "k1")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, kv.Delete(ctx, "k1"))

	exists, err = kv.Exists(ctx, "k1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRedisKV_KeysByPrefix(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "ROOM-1", []byte(`{}`)))
	require.NoError(t, kv.Set(ctx, "ROOM-2", []byte(`{}`)))
	require.NoError(t, kv.Set(ctx, "P_abc", []byte(`{}`)))

	keys, err := kv.KeysByPrefix(ctx, "ROOM-")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ROOM-1", "ROOM-2"}, keys)
}

func TestParticipants(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	participants := store.NewParticipants(kv)

	p := models.Participant{ID: "s1", Name: "Alice"}
	require.NoError(t, participants.Save(ctx, p))

	got, err := participants.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, p, got)

	require.NoError(t, participants.Delete(ctx, "s1"))

	_, err = participants.Get(ctx, "s1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRooms(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	rooms := store.NewRooms(kv)

	room := models.Room{
		ID:           42,
		Name:         "Quiz",
		CreatorID:    "s1",
		Participants: []string{"s1", "s2"},
	}
	require.NoError(t, rooms.Save(ctx, room))

	got, err := rooms.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, room, got)

	exists, err := rooms.Exists(ctx, 42)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, rooms.Delete(ctx, 42))

	_, err = rooms.Get(ctx, 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRooms_AllSkipsUnreadableRecords(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	rooms := store.NewRooms(kv)

	require.NoError(t, rooms.Save(ctx, models.Room{ID: 1, Name: "ok"}))
	require.NoError(t, kv.Set(ctx, "ROOM-2", []byte("{broken")))

	all, err := rooms.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "ok", all[0].Name)
}

func TestTopScores(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	scores := store.NewTopScores(kv)

	in := []models.TopScore{
		{Name: "alice", Score: 100},
		{Name: "bob", Score: 50},
	}
	require.NoError(t, scores.SaveAll(ctx, in))

	got, err := scores.All(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, in, got)
}
