package services

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"quizroom/models"
)

const (
	// scoreMultiplier converts a correct-answer count into points.
	scoreMultiplier = 10.3
	// questionsPerChapter is how many questions are asked before the game
	// moves on, even if the chapter pool still has unseen questions.
	questionsPerChapter = 4

	defaultTickInterval = 23 * time.Second
)

// Game drives one room through the chapter/question state machine. All
// mutable state is confined behind one mutex, so the periodic advance step
// and concurrent answer submissions never interleave.
type Game struct {
	room        models.Room
	catalog     *Catalog
	leaderboard *Leaderboard
	interval    time.Duration
	onEnd       func(roomID int)

	mu           sync.Mutex
	sessions     []*Session
	names        map[string]string // participant id -> display name
	ledger       map[string][]models.QuestionAnswer
	chapter      models.Chapter
	pool         []models.Question
	lastQuestion models.Question
	asked        int // questions asked in the active chapter
	totalAsked   int
	winnerName   string
	highestScore float64
	ended        bool

	done     chan struct{}
	stopOnce sync.Once
}

// GameConfig wires a new engine to its room, bound sessions and collaborators.
type GameConfig struct {
	Room         models.Room
	Catalog      *Catalog
	Leaderboard  *Leaderboard
	Participants []models.Participant
	Sessions     []*Session
	TickInterval time.Duration
	OnEnd        func(roomID int)
}

func NewGame(cfg GameConfig) *Game {
	g := &Game{
		room:        cfg.Room,
		catalog:     cfg.Catalog,
		leaderboard: cfg.Leaderboard,
		interval:    cfg.TickInterval,
		onEnd:       cfg.OnEnd,
		sessions:    cfg.Sessions,
		names:       make(map[string]string),
		ledger:      make(map[string][]models.QuestionAnswer),
		done:        make(chan struct{}),
	}
	if g.interval <= 0 {
		g.interval = defaultTickInterval
	}
	for _, p := range cfg.Participants {
		g.names[p.ID] = p.Name
	}
	return g
}

// Start broadcasts START, emits the first question of the first chapter and
// kicks off the tick driver.
func (g *Game) Start() {
	g.mu.Lock()
	for _, s := range g.sessions {
		if pid := s.ParticipantID(); pid != "" {
			g.ledger[pid] = []models.QuestionAnswer{}
		}
	}

	g.broadcast(models.Message{Type: models.TypeStart})

	chapter, ok := g.catalog.FirstChapter()
	if !ok {
		log.Printf("Room %d started with an empty catalog, ending immediately", g.room.ID)
		g.finish()
		g.mu.Unlock()
		return
	}
	g.adoptChapter(chapter)
	g.emitQuestion()
	g.mu.Unlock()

	go g.run()
	log.Printf("Room %d game started with %d participants", g.room.ID, len(g.ledger))
}

func (g *Game) run() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			g.advance()
		}
	}
}

// advance is the tick step: emit another question while the chapter has
// budget and pool, otherwise run elimination and move to the next chapter,
// or end the game when no chapter is left.
func (g *Game) advance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return
	}

	if g.asked < questionsPerChapter && len(g.pool) > 0 {
		g.emitQuestion()
		return
	}

	next, ok := g.catalog.NextChapter(g.chapter.Number)
	if !ok {
		g.finish()
		return
	}

	g.eliminate()
	g.adoptChapter(next)
	g.emitQuestion()
}

// SubmitAnswer checks an answer against the most recently emitted question
// and replies ANSWER_RESPONSE on the submitting session. Submissions from
// eliminated participants, or before any question was asked, are ignored.
// Repeated submissions for the same question are not deduplicated.
func (g *Game) SubmitAnswer(participantID string, answer int, replyTo *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ended || g.totalAsked == 0 {
		return
	}
	entries, active := g.ledger[participantID]
	if !active {
		return
	}

	correct := answer == g.lastQuestion.Answer
	g.ledger[participantID] = append(entries, models.QuestionAnswer{
		QuestionID: g.lastQuestion.ID,
		Correct:    correct,
		Chapter:    g.lastQuestion.Chapter,
	})
	replyTo.Enqueue(models.Message{Type: models.TypeAnswerResponse, Data: correct})
}

// Stop cancels the tick driver. Messages already queued on sessions drain
// naturally.
func (g *Game) Stop() {
	g.mu.Lock()
	g.ended = true
	g.mu.Unlock()
	g.stop()
}

func (g *Game) stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

// adoptChapter makes chapter active with a fresh pool. Lock held.
func (g *Game) adoptChapter(chapter models.Chapter) {
	g.chapter = chapter
	g.pool = append([]models.Question(nil), chapter.Questions...)
	g.asked = 0
}

// emitQuestion back-fills missed answers for the previous question, then
// picks a random unseen question and broadcasts it. Lock held.
func (g *Game) emitQuestion() {
	g.backfill()

	i := rand.Intn(len(g.pool))
	g.lastQuestion = g.pool[i]
	g.pool = append(g.pool[:i], g.pool[i+1:]...)
	g.asked++
	g.totalAsked++

	g.broadcast(models.Message{Type: models.TypeNewQuestion, Data: g.lastQuestion})
	log.Printf("Room %d: question %d (chapter %d)", g.room.ID, g.lastQuestion.ID, g.chapter.Number)
}

// backfill guarantees every asked question has exactly one ledger entry per
// still-active participant: whoever is behind the asked counter gets an
// incorrect entry for the previous question. Lock held.
func (g *Game) backfill() {
	if g.totalAsked == 0 {
		return
	}
	for pid, entries := range g.ledger {
		for len(entries) < g.totalAsked {
			entries = append(entries, models.QuestionAnswer{
				QuestionID: g.lastQuestion.ID,
				Chapter:    g.lastQuestion.Chapter,
			})
		}
		g.ledger[pid] = entries
	}
}

// eliminate removes every participant with fewer than 2 correct answers in
// the chapter just completed, sending them their final score and the
// questions they missed. Lock held.
func (g *Game) eliminate() {
	for pid, entries := range g.ledger {
		if correctInChapter(entries, g.chapter.Number) >= 2 {
			continue
		}

		report := g.scoreFor(pid, entries)
		g.sendTo(pid, models.Message{Type: models.TypeScore, Data: report})
		g.sendTo(pid, models.Message{Type: models.TypeWrongQuestions, Data: g.wrongQuestions(entries)})

		g.removeSession(pid)
		delete(g.ledger, pid)
		log.Printf("Room %d: participant %s eliminated after chapter %d", g.room.ID, pid, g.chapter.Number)
	}
}

// finish ends the game: END to everyone still playing, final scores to the
// leaderboard, per-participant wrong-question breakdowns, then termination.
// Lock held.
func (g *Game) finish() {
	if g.ended {
		return
	}
	g.ended = true

	g.broadcast(models.Message{Type: models.TypeEnd})

	reports := make(map[string]models.ScoreReport, len(g.ledger))
	for pid, entries := range g.ledger {
		reports[pid] = g.scoreFor(pid, entries)
	}
	for pid, report := range reports {
		report.Winner = g.winnerName
		g.sendTo(pid, models.Message{Type: models.TypeScore, Data: report})
		g.leaderboard.AddScore(g.names[pid], int(report.Score))
	}
	for pid, entries := range g.ledger {
		g.sendTo(pid, models.Message{Type: models.TypeWrongQuestions, Data: g.wrongQuestions(entries)})
	}

	log.Printf("Room %d game ended, winner %q", g.room.ID, g.winnerName)
	g.stop()
	if g.onEnd != nil {
		go g.onEnd(g.room.ID)
	}
}

// scoreFor computes a participant's report over their full history and keeps
// the running leader up to date. Lock held.
func (g *Game) scoreFor(pid string, entries []models.QuestionAnswer) models.ScoreReport {
	correct := 0
	for _, e := range entries {
		if e.Correct {
			correct++
		}
	}
	score := float64(correct) * scoreMultiplier
	if score > g.highestScore {
		g.highestScore = score
		g.winnerName = g.names[pid]
	}
	return models.ScoreReport{
		Score:   score,
		Correct: correct,
		Wrong:   g.totalAsked - correct,
		Winner:  g.winnerName,
	}
}

// wrongQuestions resolves a ledger's incorrect entries into full questions,
// grouped by chapter. Lock held.
func (g *Game) wrongQuestions(entries []models.QuestionAnswer) map[int][]models.Question {
	missed := make(map[int][]models.Question)
	for _, e := range entries {
		if e.Correct {
			continue
		}
		q, ok := g.catalog.QuestionByID(e.QuestionID)
		if !ok {
			continue
		}
		missed[q.Chapter] = append(missed[q.Chapter], q)
	}
	return missed
}

func correctInChapter(entries []models.QuestionAnswer, chapter int) int {
	n := 0
	for _, e := range entries {
		if e.Correct && e.Chapter == chapter {
			n++
		}
	}
	return n
}

// broadcast enqueues msg on every bound session. Lock held.
func (g *Game) broadcast(msg models.Message) {
	for _, s := range g.sessions {
		s.Enqueue(msg)
	}
}

// sendTo enqueues msg on the bound session of one participant. Lock held.
func (g *Game) sendTo(participantID string, msg models.Message) {
	for _, s := range g.sessions {
		if s.ParticipantID() == participantID {
			s.Enqueue(msg)
			return
		}
	}
}

// removeSession unbinds a participant's session from the game. Lock held.
func (g *Game) removeSession(participantID string) {
	for i, s := range g.sessions {
		if s.ParticipantID() == participantID {
			g.sessions = append(g.sessions[:i], g.sessions[i+1:]...)
			return
		}
	}
}
