package notemaster

import (
	"sort"
	"sync"
)

// Store holds all session data: notes, generated question sets, and
// per-note attempt history. It is constructed once per session and passed
// to every component that needs it; nothing else holds a copy.
type Store struct {
	mu        sync.RWMutex
	notes     map[string]string     // title -> content
	questions map[string][]Question // title -> generated question set
	stats     map[string][]Attempt  // title -> append-only attempt log
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		notes:     make(map[string]string),
		questions: make(map[string][]Question),
		stats:     make(map[string][]Attempt),
	}
}

// ListNotes returns all notes sorted by title.
func (s *Store) ListNotes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]Note, 0, len(s.notes))
	for title, content := range s.notes {
		notes = append(notes, Note{Title: title, Content: content})
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Title < notes[j].Title
	})
	return notes
}

// GetNote returns the note with the given title, if it exists.
func (s *Store) GetNote(title string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.notes[title]
	if !ok {
		return Note{}, false
	}
	return Note{Title: title, Content: content}, true
}

// PutNote inserts a note or overwrites the one with the same title.
func (s *Store) PutNote(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[title] = content
}

// DeleteNote removes a note along with its question set and attempt
// history. Deleting an absent title is a no-op.
func (s *Store) DeleteNote(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, title)
	delete(s.questions, title)
	delete(s.stats, title)
}

// RenameNote deletes the old title and stores the content under the new
// one. The old title's questions and attempt history are dropped with it;
// a renamed note starts over.
func (s *Store) RenameNote(oldTitle, newTitle, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, oldTitle)
	delete(s.questions, oldTitle)
	delete(s.stats, oldTitle)
	s.notes[newTitle] = content
}

// PutQuestions replaces the question set for a note wholesale.
func (s *Store) PutQuestions(title string, questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[title] = append([]Question(nil), questions...)
}

// GetQuestions returns the question set for a note, empty if none exists.
func (s *Store) GetQuestions(title string) []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Question(nil), s.questions[title]...)
}

// AppendAttempt appends an attempt to a note's history, creating the
// history if this is the note's first attempt.
func (s *Store) AppendAttempt(title string, attempt Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[title] = append(s.stats[title], attempt)
}

// GetAttempts returns a note's attempts in insertion (chronological)
// order, empty if none exist.
func (s *Store) GetAttempts(title string) []Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Attempt(nil), s.stats[title]...)
}

// GetAllAttempts returns every note's attempt history keyed by title.
func (s *Store) GetAllAttempts() map[string][]Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string][]Attempt, len(s.stats))
	for title, attempts := range s.stats {
		all[title] = append([]Attempt(nil), attempts...)
	}
	return all
}

// ClearAttempts removes one note's attempt history.
func (s *Store) ClearAttempts(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stats, title)
}

// ClearAllAttempts removes every note's attempt history. Notes and
// question sets are untouched.
func (s *Store) ClearAllAttempts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = make(map[string][]Attempt)
}

// replace swaps in all three tables at once. Used by Import after the
// whole document has parsed, so a failed import never leaves a partial
// state behind.
func (s *Store) replace(notes map[string]string, questions map[string][]Question, stats map[string][]Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
	s.questions = questions
	s.stats = stats
}
