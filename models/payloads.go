package models

// RoomDetails is the payload of ROOM_CREATED, ROOM_JOINED and NEW_ROOM, and
// the element type of the GET_ROOMS response. Participants come resolved so
// clients never see bare ids.
type RoomDetails struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	IsCreator    bool          `json:"isCreator"`
	HasStarted   bool          `json:"hasStarted"`
}

// AnswerSubmission is the payload of an inbound ANSWER message.
type AnswerSubmission struct {
	RoomID        int    `json:"roomId"`
	ParticipantID string `json:"participantId"`
	Answer        int    `json:"answer"`
}

// ScoreReport is the payload of a SCORE message.
type ScoreReport struct {
	Score   float64 `json:"score"`
	Correct int     `json:"correct"`
	Wrong   int     `json:"wrong"`
	Winner  string  `json:"winner"`
}
