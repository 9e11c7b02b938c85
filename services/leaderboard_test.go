package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"quizroom/models"
)

func TestLeaderboardSortsDescending(t *testing.T) {
	_, _, topScores := newTestStores(t)
	l := NewLeaderboard(context.Background(), topScores)

	l.AddScore("bob", 20)
	l.AddScore("alice", 51)
	l.AddScore("carol", 41)

	require.Equal(t, []models.TopScore{
		{Name: "alice", Score: 51},
		{Name: "carol", Score: 41},
		{Name: "bob", Score: 20},
	}, l.TopScores())
}

func TestLeaderboardKeepsBestScorePerName(t *testing.T) {
	_, _, topScores := newTestStores(t)
	l := NewLeaderboard(context.Background(), topScores)

	l.AddScore("alice", 100)
	l.AddScore("alice", 90)
	require.Equal(t, []models.TopScore{{Name: "alice", Score: 100}}, l.TopScores())

	l.AddScore("alice", 120)
	require.Equal(t, []models.TopScore{{Name: "alice", Score: 120}}, l.TopScores())
}

func TestLeaderboardTruncates(t *testing.T) {
	_, _, topScores := newTestStores(t)
	l := NewLeaderboard(context.Background(), topScores)

	for i := 1; i <= 12; i++ {
		l.AddScore(fmt.Sprintf("player-%d", i), i*10)
	}

	scores := l.TopScores()
	require.Len(t, scores, 10)
	require.Equal(t, 120, scores[0].Score)
	require.Equal(t, 30, scores[len(scores)-1].Score)
}

func TestLeaderboardPersistsAndRehydrates(t *testing.T) {
	_, _, topScores := newTestStores(t)
	ctx := context.Background()

	l := NewLeaderboard(ctx, topScores)
	l.AddScore("alice", 70)
	l.AddScore("bob", 30)
	l.Flush()

	reloaded := NewLeaderboard(ctx, topScores)
	require.Equal(t, []models.TopScore{
		{Name: "alice", Score: 70},
		{Name: "bob", Score: 30},
	}, reloaded.TopScores())
}
