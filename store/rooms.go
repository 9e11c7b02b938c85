package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"quizroom/models"
)

const roomPrefix = "ROOM-"

// Rooms persists room records in the "ROOM-" namespace.
type Rooms struct {
	kv KV
}

func NewRooms(kv KV) *Rooms {
	return &Rooms{kv: kv}
}

func roomKey(id int) string {
	return fmt.Sprintf("%s%d", roomPrefix, id)
}

func (s *Rooms) Get(ctx context.Context, id int) (models.Room, error) {
	var r models.Room
	data, err := s.kv.Get(ctx, roomKey(id))
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(data, &r)
	return r, err
}

func (s *Rooms) Save(ctx context.Context, r models.Room) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, roomKey(r.ID), data)
}

func (s *Rooms) Delete(ctx context.Context, id int) error {
	return s.kv.Delete(ctx, roomKey(id))
}

func (s *Rooms) Exists(ctx context.Context, id int) (bool, error) {
	return s.kv.Exists(ctx, roomKey(id))
}

// All returns every persisted room. Rooms that fail to load are skipped.
func (s *Rooms) All(ctx context.Context) ([]models.Room, error) {
	keys, err := s.kv.KeysByPrefix(ctx, roomPrefix)
	if err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var r models.Room
		if err := json.Unmarshal(data, &r); err != nil {
			log.Printf("Skipping unreadable room record %s: %v", key, err)
			continue
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}
