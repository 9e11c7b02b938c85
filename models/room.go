package models

// Room is a named lobby grouping participants for one game. Persisted in the
// room namespace of the key-value store.
type Room struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	CreatorID    string   `json:"creatorId"`
	Participants []string `json:"participants"`
	HasStarted   bool     `json:"hasStarted"`
}

// HasParticipant reports whether id is a current member.
func (r Room) HasParticipant(id string) bool {
	for _, p := range r.Participants {
		if p == id {
			return true
		}
	}
	return false
}
