package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gorm.io/gorm"

	"quizroom/models"
)

// Catalog is the static question bank, loaded once at startup and immutable
// afterwards. Questions group into chapters by their chapter number.
type Catalog struct {
	questions []models.Question
	chapters  map[int]models.Chapter
	first     int
}

// LoadCatalogFile reads a JSON array of questions from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}

	var records []struct {
		ID      int      `json:"id"`
		Text    string   `json:"question"`
		Answer  int      `json:"answer"`
		Options []string `json:"options"`
		Chapter int      `json:"chapter"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}

	questions := make([]models.Question, 0, len(records))
	for _, rec := range records {
		questions = append(questions, models.Question{
			ID:      rec.ID,
			Text:    rec.Text,
			Options: rec.Options,
			Answer:  rec.Answer,
			Chapter: rec.Chapter,
		})
	}
	return NewCatalog(questions), nil
}

// LoadCatalogDB reads the question bank from the questions/options tables.
func LoadCatalogDB(db *gorm.DB) (*Catalog, error) {
	var rows []models.QuestionRow
	err := db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load question rows: %w", err)
	}

	questions := make([]models.Question, 0, len(rows))
	for _, row := range rows {
		q := models.Question{
			ID:      int(row.ID),
			Text:    row.Text,
			Chapter: row.Chapter,
			Answer:  -1,
		}
		for i, opt := range row.Options {
			q.Options = append(q.Options, opt.Text)
			if opt.IsCorrect {
				q.Answer = i
			}
		}
		if q.Answer < 0 {
			return nil, fmt.Errorf("question %d has no correct option", row.ID)
		}
		questions = append(questions, q)
	}
	return NewCatalog(questions), nil
}

// NewCatalog groups questions into chapters.
func NewCatalog(questions []models.Question) *Catalog {
	c := &Catalog{
		questions: questions,
		chapters:  make(map[int]models.Chapter),
	}
	for _, q := range questions {
		ch := c.chapters[q.Chapter]
		ch.Number = q.Chapter
		ch.Questions = append(ch.Questions, q)
		c.chapters[q.Chapter] = ch
	}

	numbers := make([]int, 0, len(c.chapters))
	for n := range c.chapters {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	if len(numbers) > 0 {
		c.first = numbers[0]
	}
	return c
}

func (c *Catalog) QuestionByID(id int) (models.Question, bool) {
	for _, q := range c.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

func (c *Catalog) FirstChapter() (models.Chapter, bool) {
	ch, ok := c.chapters[c.first]
	return ch, ok && len(c.chapters) > 0
}

// NextChapter returns the chapter immediately after number n, if any.
func (c *Catalog) NextChapter(n int) (models.Chapter, bool) {
	ch, ok := c.chapters[n+1]
	return ch, ok
}
