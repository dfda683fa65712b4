package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	notemaster "github.com/mamour-dx/NoteMaster"
)

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "quiz", map[string]interface{}{
		"Notes":    s.store.ListNotes(),
		"Selected": s.quiz.NoteTitle(),
	})
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	regenerate := r.FormValue("regenerate") != ""

	// Switching notes resets the session before starting fresh.
	if s.quiz.NoteTitle() != "" && s.quiz.NoteTitle() != title {
		s.quiz.Reset()
	}
	if regenerate {
		// Start only generates when the store has no set; dropping the
		// stored set forces a new service call. Only do this for a note
		// that exists, otherwise the questions table gains an orphan key.
		if _, ok := s.store.GetNote(title); ok {
			s.store.PutQuestions(title, nil)
		}
	}

	ctx, cancel := contextWithQuizTimeout(r)
	defer cancel()

	if err := s.quiz.Start(ctx, title); err != nil {
		log.Printf("Failed to start quiz for %q: %v", title, err)
		s.flash(w, r, "Could not start the quiz: "+err.Error())
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/quiz/question", http.StatusSeeOther)
}

func (s *Server) handleQuizQuestion(w http.ResponseWriter, r *http.Request) {
	if s.quiz.State() == notemaster.QuizCompleted {
		http.Redirect(w, r, "/quiz/results", http.StatusSeeOther)
		return
	}

	question, ok := s.quiz.Current()
	if !ok {
		s.flash(w, r, "No quiz in progress. Pick a note first.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	s.render(w, r, "question", map[string]interface{}{
		"Note":     s.quiz.NoteTitle(),
		"Question": question,
		"Number":   s.quiz.Index() + 1,
		"Total":    s.quiz.QuestionCount(),
	})
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	ctx, cancel := contextWithQuizTimeout(r)
	defer cancel()

	evaluation, err := s.quiz.Submit(ctx, r.FormValue("answer"))
	switch err {
	case nil:
		s.flash(w, r, "Scored "+scoreLabel(evaluation.Score)+": "+evaluation.Feedback)
	case notemaster.ErrEmptyAnswer:
		s.flash(w, r, "Please enter an answer before submitting.")
	case notemaster.ErrQuizNotActive:
		s.flash(w, r, "No quiz in progress.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	default:
		log.Printf("Failed to submit answer: %v", err)
		s.flash(w, r, "Something went wrong submitting the answer.")
	}

	http.Redirect(w, r, "/quiz/question", http.StatusSeeOther)
}

func (s *Server) handleQuizSkip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.quiz.Skip(); err != nil {
		s.flash(w, r, "No quiz in progress.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz/question", http.StatusSeeOther)
}

func (s *Server) handleQuizRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.quiz.Restart()
	if s.quiz.State() != notemaster.QuizInProgress {
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz/question", http.StatusSeeOther)
}

func (s *Server) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	if s.quiz.State() != notemaster.QuizCompleted {
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	summary := s.quiz.Summary()
	s.render(w, r, "results", map[string]interface{}{
		"Note":    s.quiz.NoteTitle(),
		"Results": s.quiz.Results(),
		"Summary": summary,
	})
}

// noteStats is one row of the statistics page.
type noteStats struct {
	Title        string
	Attempts     []notemaster.Attempt
	AttemptCount int
	TotalScore   int
	MaxScore     int
	AverageScore float64
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	all := s.store.GetAllAttempts()

	rows := make([]noteStats, 0, len(all))
	for title, attempts := range all {
		if len(attempts) == 0 {
			continue
		}
		total := 0
		for _, a := range attempts {
			total += a.Score
		}
		// Display newest first; storage order stays chronological.
		sorted := append([]notemaster.Attempt(nil), attempts...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp > sorted[j].Timestamp
		})
		rows = append(rows, noteStats{
			Title:        title,
			Attempts:     sorted,
			AttemptCount: len(attempts),
			TotalScore:   total,
			MaxScore:     len(attempts) * notemaster.MaxScore,
			AverageScore: float64(total) / float64(len(attempts)),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Title < rows[j].Title })

	s.render(w, r, "stats", map[string]interface{}{
		"Rows": rows,
	})
}

func (s *Server) handleStatsDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	s.store.ClearAttempts(title)
	s.flash(w, r, "Statistics deleted for "+title)
	http.Redirect(w, r, "/stats", http.StatusSeeOther)
}

func (s *Server) handleStatsClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.store.ClearAllAttempts()
	s.flash(w, r, "All statistics deleted")
	http.Redirect(w, r, "/stats", http.StatusSeeOther)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "data", nil)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Export()
	if err != nil {
		log.Printf("Failed to export data: %v", err)
		http.Error(w, "Failed to export data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="notemaster_data.json"`)
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write export: %v", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, _, err := r.FormFile("datafile")
	if err != nil {
		s.flash(w, r, "Please choose a JSON file to import.")
		http.Redirect(w, r, "/data", http.StatusSeeOther)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Failed to read upload: %v", err)
		s.flash(w, r, "Could not read the uploaded file.")
		http.Redirect(w, r, "/data", http.StatusSeeOther)
		return
	}

	if err := s.store.Import(data); err != nil {
		log.Printf("Import failed: %v", err)
		s.flash(w, r, "Import failed, the file does not look like a NoteMaster export. Your data is unchanged.")
		http.Redirect(w, r, "/data", http.StatusSeeOther)
		return
	}

	// Imported tables replace everything, including whatever quiz was
	// in flight.
	s.quiz.Reset()
	s.flash(w, r, "Data imported successfully.")
	http.Redirect(w, r, "/data", http.StatusSeeOther)
}

func scoreLabel(score int) string {
	return fmt.Sprintf("%d/%d", score, notemaster.MaxScore)
}

func contextWithQuizTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 2*time.Minute)
}
