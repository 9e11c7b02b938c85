package models

// Question belongs to a chapter. Answer is the index of the correct option;
// it is never serialized so an active quiz cannot leak the solution.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  int      `json:"-"`
	Chapter int      `json:"chapter"`
}

// Chapter groups the questions played in one round of the game.
type Chapter struct {
	Number    int        `json:"number"`
	Questions []Question `json:"questions"`
}

// QuestionAnswer is one ledger entry for a running game: which question a
// participant answered (or failed to answer) and whether they got it right.
type QuestionAnswer struct {
	QuestionID int  `json:"question"`
	Correct    bool `json:"isCorrect"`
	Chapter    int  `json:"chapter"`
}
