package models

// QuestionRow and OptionRow are the database shape of the question bank. The
// catalog reads them once at startup; gameplay never touches the database.

type QuestionRow struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Text    string `json:"text" gorm:"not null"`
	Chapter int    `json:"chapter" gorm:"not null;index"`

	Options []OptionRow `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type OptionRow struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null"`
	Text       string `json:"text" gorm:"not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
	Position   int    `json:"position" gorm:"not null"`
}
