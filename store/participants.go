package store

import (
	"context"
	"encoding/json"

	"quizroom/models"
)

const participantPrefix = "P_"

// Participants persists participant records in the "P_" namespace.
type Participants struct {
	kv KV
}

func NewParticipants(kv KV) *Participants {
	return &Participants{kv: kv}
}

func (s *Participants) Get(ctx context.Context, id string) (models.Participant, error) {
	var p models.Participant
	data, err := s.kv.Get(ctx, participantPrefix+id)
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(data, &p)
	return p, err
}

func (s *Participants) Save(ctx context.Context, p models.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, participantPrefix+p.ID, data)
}

func (s *Participants) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, participantPrefix+id)
}
