package models

// TopScore is one leaderboard entry, keyed by participant name in the store.
type TopScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
