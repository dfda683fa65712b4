package notemaster

import (
	"context"
	"errors"
	"strings"
	"time"
)

// QuizState is the current phase of a quiz session.
type QuizState int

const (
	QuizNotStarted QuizState = iota
	QuizInProgress
	QuizCompleted
)

func (s QuizState) String() string {
	switch s {
	case QuizNotStarted:
		return "not_started"
	case QuizInProgress:
		return "in_progress"
	case QuizCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	// ErrNoteNotFound is returned when a quiz is started for a title the
	// store does not hold.
	ErrNoteNotFound = errors.New("note not found")
	// ErrEmptyAnswer is returned when a submitted answer is empty or
	// whitespace only. Nothing is evaluated or recorded.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrQuizNotActive is returned for submit/skip outside InProgress.
	ErrQuizNotActive = errors.New("quiz is not in progress")
)

// QuizResult is one answered question within a quiz run, kept for the
// results screen. Skipped questions leave no result.
type QuizResult struct {
	Question        string
	UserAnswer      string
	ReferenceAnswer string
	Score           int
	Feedback        string
}

// QuizSummary aggregates a completed (or in-flight) quiz run.
type QuizSummary struct {
	TotalScore int
	MaxScore   int
	Percentage float64
}

// QuizSession drives one note's quiz question by question: NotStarted ->
// InProgress{index, results} -> Completed{results}. The UI only reads the
// current state and dispatches transitions; all persistence goes through
// the store.
type QuizSession struct {
	store     *Store
	maker     *QuestionMaker
	evaluator *Evaluator

	noteTitle string
	questions []Question
	index     int
	results   []QuizResult
	state     QuizState
}

// NewQuizSession creates a session over a store, question maker, and
// evaluator. It starts in NotStarted.
func NewQuizSession(store *Store, maker *QuestionMaker, evaluator *Evaluator) *QuizSession {
	return &QuizSession{
		store:     store,
		maker:     maker,
		evaluator: evaluator,
	}
}

// Start begins a quiz for the given note. If the store holds no question
// set for it, one is generated (and stored) first. The previous run's
// progress is discarded.
func (qs *QuizSession) Start(ctx context.Context, title string) error {
	note, ok := qs.store.GetNote(title)
	if !ok {
		return ErrNoteNotFound
	}

	questions := qs.store.GetQuestions(title)
	if len(questions) == 0 {
		set := qs.maker.Generate(ctx, note.Title, note.Content)
		questions = set.Questions
		qs.store.PutQuestions(title, questions)
		VerboseLog("Generated %d questions for quiz on %q (origin: %s)", len(questions), title, set.Origin)
	}

	qs.noteTitle = title
	qs.questions = questions
	qs.index = 0
	qs.results = nil
	qs.state = QuizInProgress
	return nil
}

// State returns the session's current phase.
func (qs *QuizSession) State() QuizState {
	return qs.state
}

// NoteTitle returns the title of the note being quizzed.
func (qs *QuizSession) NoteTitle() string {
	return qs.noteTitle
}

// QuestionCount returns the size of the active question set.
func (qs *QuizSession) QuestionCount() int {
	return len(qs.questions)
}

// Index returns the zero-based position of the current question.
func (qs *QuizSession) Index() int {
	return qs.index
}

// Current returns the question awaiting an answer. ok is false unless the
// session is in progress.
func (qs *QuizSession) Current() (q Question, ok bool) {
	if qs.state != QuizInProgress || qs.index >= len(qs.questions) {
		return Question{}, false
	}
	return qs.questions[qs.index], true
}

// Submit evaluates an answer to the current question, records the result,
// persists an attempt to the store, and advances. An empty or
// whitespace-only answer is rejected without any state change.
func (qs *QuizSession) Submit(ctx context.Context, answer string) (Evaluation, error) {
	if qs.state != QuizInProgress {
		return Evaluation{}, ErrQuizNotActive
	}
	if strings.TrimSpace(answer) == "" {
		return Evaluation{}, ErrEmptyAnswer
	}

	question := qs.questions[qs.index]
	evaluation := qs.evaluator.Evaluate(ctx, answer, question.Answer)

	qs.results = append(qs.results, QuizResult{
		Question:        question.Text,
		UserAnswer:      answer,
		ReferenceAnswer: question.Answer,
		Score:           evaluation.Score,
		Feedback:        evaluation.Feedback,
	})
	qs.store.AppendAttempt(qs.noteTitle, Attempt{
		Timestamp:     time.Now().Format(time.RFC3339),
		Question:      question.Text,
		UserAnswer:    answer,
		CorrectAnswer: question.Answer,
		Score:         evaluation.Score,
	})

	qs.advance()
	return evaluation, nil
}

// Skip advances past the current question without evaluation or
// persistence.
func (qs *QuizSession) Skip() error {
	if qs.state != QuizInProgress {
		return ErrQuizNotActive
	}
	qs.advance()
	return nil
}

func (qs *QuizSession) advance() {
	qs.index++
	if qs.index >= len(qs.questions) {
		qs.state = QuizCompleted
	}
}

// Restart returns to the first question of the same question set with
// empty results. It does not regenerate questions. Restarting a session
// that never started is a no-op.
func (qs *QuizSession) Restart() {
	if qs.state == QuizNotStarted {
		return
	}
	qs.index = 0
	qs.results = nil
	qs.state = QuizInProgress
}

// Reset fully clears the session back to NotStarted, e.g. when the user
// switches to another note. Persisted attempts are untouched.
func (qs *QuizSession) Reset() {
	qs.noteTitle = ""
	qs.questions = nil
	qs.index = 0
	qs.results = nil
	qs.state = QuizNotStarted
}

// Results returns the answered questions of the current run.
func (qs *QuizSession) Results() []QuizResult {
	return append([]QuizResult(nil), qs.results...)
}

// Summary aggregates the run: total score, maximum possible (5 per
// answered question), and the percentage (0 when nothing was answered).
func (qs *QuizSession) Summary() QuizSummary {
	total := 0
	for _, result := range qs.results {
		total += result.Score
	}
	max := len(qs.results) * MaxScore
	percentage := 0.0
	if max > 0 {
		percentage = float64(total) / float64(max) * 100
	}
	return QuizSummary{TotalScore: total, MaxScore: max, Percentage: percentage}
}
