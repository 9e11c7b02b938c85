package store

import (
	"context"
	"encoding/json"
	"log"

	"quizroom/models"
)

const topScorePrefix = "T_"

// TopScores persists leaderboard entries in the "T_" namespace, one key per
// participant name.
type TopScores struct {
	kv KV
}

func NewTopScores(kv KV) *TopScores {
	return &TopScores{kv: kv}
}

// All loads every persisted top score. Unreadable entries are skipped.
func (s *TopScores) All(ctx context.Context) ([]models.TopScore, error) {
	keys, err := s.kv.KeysByPrefix(ctx, topScorePrefix)
	if err != nil {
		return nil, err
	}

	scores := make([]models.TopScore, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var ts models.TopScore
		if err := json.Unmarshal(data, &ts); err != nil {
			log.Printf("Skipping unreadable top score record %s: %v", key, err)
			continue
		}
		scores = append(scores, ts)
	}
	return scores, nil
}

// SaveAll writes the full leaderboard, keyed by participant name.
func (s *TopScores) SaveAll(ctx context.Context, scores []models.TopScore) error {
	for _, ts := range scores {
		data, err := json.Marshal(ts)
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, topScorePrefix+ts.Name, data); err != nil {
			return err
		}
	}
	return nil
}
