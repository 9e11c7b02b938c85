package services

import (
	"context"
	"log"
	"sort"
	"sync"

	"quizroom/models"
	"quizroom/store"
)

const leaderboardSize = 10

// Leaderboard keeps the global top scores in memory, rehydrated from the
// store at construction. Every mutation schedules an asynchronous re-save of
// the whole list.
type Leaderboard struct {
	mu     sync.Mutex
	scores []models.TopScore
	store  *store.TopScores

	saving sync.WaitGroup
}

func NewLeaderboard(ctx context.Context, ts *store.TopScores) *Leaderboard {
	l := &Leaderboard{store: ts}

	scores, err := ts.All(ctx)
	if err != nil {
		log.Printf("Could not load persisted top scores: %v", err)
		return l
	}
	l.scores = scores
	l.sortAndTruncate()
	return l
}

// AddScore records a score for name. An existing entry is replaced only by a
// strictly higher score; the list stays sorted descending and capped at 10.
func (l *Leaderboard) AddScore(name string, score int) {
	l.mu.Lock()

	found := false
	for i := range l.scores {
		if l.scores[i].Name == name {
			found = true
			if score > l.scores[i].Score {
				l.scores[i].Score = score
			}
			break
		}
	}
	if !found {
		l.scores = append(l.scores, models.TopScore{Name: name, Score: score})
	}
	l.sortAndTruncate()

	snapshot := make([]models.TopScore, len(l.scores))
	copy(snapshot, l.scores)
	l.mu.Unlock()

	l.saving.Add(1)
	go func() {
		defer l.saving.Done()
		if err := l.store.SaveAll(context.Background(), snapshot); err != nil {
			log.Printf("Could not persist top scores: %v", err)
		}
	}()
}

// TopScores returns a read-only snapshot of the current list.
func (l *Leaderboard) TopScores() []models.TopScore {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.TopScore, len(l.scores))
	copy(out, l.scores)
	return out
}

// sortAndTruncate must be called with the lock held.
func (l *Leaderboard) sortAndTruncate() {
	sort.SliceStable(l.scores, func(i, j int) bool {
		return l.scores[i].Score > l.scores[j].Score
	})
	if len(l.scores) > leaderboardSize {
		l.scores = l.scores[:leaderboardSize]
	}
}

// Flush waits for in-flight saves; used by tests and shutdown.
func (l *Leaderboard) Flush() {
	l.saving.Wait()
}
