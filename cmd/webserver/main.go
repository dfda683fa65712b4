package main

import (
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	notemaster "github.com/mamour-dx/NoteMaster"

	"github.com/gorilla/sessions"
)

// Server wires the shared store, the quiz components, and the template
// set behind the HTTP handlers. One logical user drives one quiz session
// at a time, so the server holds a single QuizSession.
type Server struct {
	store     *notemaster.Store
	cfg       notemaster.Config
	maker     *notemaster.QuestionMaker
	evaluator *notemaster.Evaluator
	quiz      *notemaster.QuizSession
	sessions  *sessions.CookieStore
	templates map[string]*template.Template
}

func main() {
	notemaster.SetVerbose(os.Getenv("NOTEMASTER_VERBOSE") != "")

	cfg := notemaster.LoadConfig()
	if !cfg.HasCredential() {
		log.Printf("No DEEPSEEK_KEY configured: running with placeholder questions and local evaluation")
	}

	store := notemaster.NewStore()
	maker := notemaster.NewQuestionMaker(cfg)
	evaluator := notemaster.NewEvaluator(cfg)

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "notemaster-dev-secret"
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))

	// Load templates with custom functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"pct": func(total, max int) float64 {
			if max == 0 {
				return 0
			}
			return float64(total) / float64(max) * 100
		},
		"snippet": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "…"
		},
	}

	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"notes", "templates/notes.html"},
		{"quiz", "templates/quiz.html"},
		{"question", "templates/question.html"},
		{"results", "templates/results.html"},
		{"stats", "templates/stats.html"},
		{"data", "templates/data.html"},
	}

	templates := make(map[string]*template.Template)
	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	server := &Server{
		store:     store,
		cfg:       cfg,
		maker:     maker,
		evaluator: evaluator,
		quiz:      notemaster.NewQuizSession(store, maker, evaluator),
		sessions:  sessionStore,
		templates: templates,
	}

	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/notes", server.handleNotes)
	http.HandleFunc("/notes/create", server.handleNoteCreate)
	http.HandleFunc("/notes/update", server.handleNoteUpdate)
	http.HandleFunc("/notes/delete", server.handleNoteDelete)
	http.HandleFunc("/quiz", server.handleQuiz)
	http.HandleFunc("/quiz/start", server.handleQuizStart)
	http.HandleFunc("/quiz/question", server.handleQuizQuestion)
	http.HandleFunc("/quiz/answer", server.handleQuizAnswer)
	http.HandleFunc("/quiz/skip", server.handleQuizSkip)
	http.HandleFunc("/quiz/restart", server.handleQuizRestart)
	http.HandleFunc("/quiz/results", server.handleQuizResults)
	http.HandleFunc("/stats", server.handleStats)
	http.HandleFunc("/stats/delete", server.handleStatsDelete)
	http.HandleFunc("/stats/clear", server.handleStatsClear)
	http.HandleFunc("/data", server.handleData)
	http.HandleFunc("/data/export", server.handleExport)
	http.HandleFunc("/data/import", server.handleImport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// render executes a page template inside base.html, attaching any pending
// flash messages.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	session, _ := s.sessions.Get(r, "notemaster")
	if flashes := session.Flashes(); len(flashes) > 0 {
		messages := make([]string, 0, len(flashes))
		for _, f := range flashes {
			if msg, ok := f.(string); ok {
				messages = append(messages, msg)
			}
		}
		data["Flashes"] = messages
		if err := session.Save(r, w); err != nil {
			log.Printf("Failed to save session: %v", err)
		}
	}

	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// flash queues a message for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := s.sessions.Get(r, "notemaster")
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	notes := s.store.ListNotes()
	attempts := 0
	for _, list := range s.store.GetAllAttempts() {
		attempts += len(list)
	}

	s.render(w, r, "home", map[string]interface{}{
		"NoteCount":    len(notes),
		"AttemptCount": attempts,
		"Degraded":     !s.cfg.HasCredential(),
	})
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	editTitle := r.URL.Query().Get("edit")
	var editing *notemaster.Note
	if editTitle != "" {
		if note, ok := s.store.GetNote(editTitle); ok {
			editing = &note
		}
	}

	s.render(w, r, "notes", map[string]interface{}{
		"Notes":   s.store.ListNotes(),
		"Editing": editing,
	})
}

func (s *Server) handleNoteCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" || strings.TrimSpace(content) == "" {
		s.flash(w, r, "Please fill in both the title and the content.")
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	s.store.PutNote(title, content)
	s.flash(w, r, "Note created: "+title)
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) handleNoteUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	originalTitle := r.FormValue("original_title")
	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" || strings.TrimSpace(content) == "" {
		s.flash(w, r, "Please fill in both the title and the content.")
		http.Redirect(w, r, "/notes?edit="+url.QueryEscape(originalTitle), http.StatusSeeOther)
		return
	}

	if _, ok := s.store.GetNote(originalTitle); !ok {
		s.flash(w, r, "Note no longer exists: "+originalTitle)
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	if title != originalTitle {
		// Rename drops the old title's questions and history.
		s.store.RenameNote(originalTitle, title, content)
		s.flash(w, r, "Note renamed and updated: "+title)
	} else {
		s.store.PutNote(title, content)
		s.flash(w, r, "Note updated: "+title)
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	s.store.DeleteNote(title)
	if s.quiz.NoteTitle() == title {
		s.quiz.Reset()
	}
	s.flash(w, r, "Note deleted: "+title)
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}
