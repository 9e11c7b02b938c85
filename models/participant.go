package models

// Participant is the persisted record behind one registered user. Its id is
// the session id of the connection that registered it.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
