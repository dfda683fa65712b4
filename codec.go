package notemaster

import (
	"encoding/json"
	"fmt"
)

// exportDocument is the on-disk shape of a full data export: three
// top-level objects keyed by note title. The format is what the UI offers
// for download and accepts back on upload.
type exportDocument struct {
	Notes     map[string]string     `json:"notes"`
	Questions map[string][]Question `json:"questions"`
	Stats     map[string]attemptLog `json:"stats"`
}

type attemptLog struct {
	Attempts []Attempt `json:"attempts"`
}

// Export serializes the entire store to a single JSON document.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	doc := exportDocument{
		Notes:     make(map[string]string, len(s.notes)),
		Questions: make(map[string][]Question, len(s.questions)),
		Stats:     make(map[string]attemptLog, len(s.stats)),
	}
	for title, content := range s.notes {
		doc.Notes[title] = content
	}
	for title, questions := range s.questions {
		doc.Questions[title] = append([]Question(nil), questions...)
	}
	for title, attempts := range s.stats {
		doc.Stats[title] = attemptLog{Attempts: append([]Attempt(nil), attempts...)}
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// Import replaces the store's three tables wholesale with the contents of
// an exported JSON document. Missing top-level keys default to empty
// tables. On any parse or shape error the store is left untouched; there
// is no partial import.
func (s *Store) Import(data []byte) error {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse import: %w", err)
	}

	notes := make(map[string]string, len(doc.Notes))
	for title, content := range doc.Notes {
		notes[title] = content
	}
	questions := make(map[string][]Question, len(doc.Questions))
	for title, qs := range doc.Questions {
		questions[title] = append([]Question(nil), qs...)
	}
	stats := make(map[string][]Attempt, len(doc.Stats))
	for title, history := range doc.Stats {
		// A history only exists once an attempt is appended; imported
		// entries with no attempts are dropped.
		if len(history.Attempts) == 0 {
			continue
		}
		stats[title] = append([]Attempt(nil), history.Attempts...)
	}

	s.replace(notes, questions, stats)
	return nil
}
