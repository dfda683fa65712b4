package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	notemaster "github.com/mamour-dx/NoteMaster"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Handlers under test run without a credential and only ever redirect, so
// no templates are needed.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := notemaster.Config{QuestionsDir: t.TempDir()}
	store := notemaster.NewStore()
	maker := notemaster.NewQuestionMaker(cfg)
	evaluator := notemaster.NewEvaluator(cfg)
	return &Server{
		store:     store,
		cfg:       cfg,
		maker:     maker,
		evaluator: evaluator,
		quiz:      notemaster.NewQuizSession(store, maker, evaluator),
		sessions:  sessions.NewCookieStore([]byte("test-secret")),
	}
}

func postForm(t *testing.T, handler http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// Starting a quiz for a title the store does not hold must not leave an
// orphan key in the questions table, even on the regenerate path.
func TestQuizStartUnknownTitleLeavesNoOrphanQuestions(t *testing.T) {
	server := newTestServer(t)

	w := postForm(t, server.handleQuizStart, "/quiz/start", url.Values{
		"title":      {"Ghost"},
		"regenerate": {"1"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/quiz", w.Header().Get("Location"))

	data, err := server.store.Export()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Ghost")
}

func TestQuizStartRegenerateReplacesStoredSet(t *testing.T) {
	server := newTestServer(t)
	server.store.PutNote("Biology", "Mitochondria produce ATP.")
	server.store.PutQuestions("Biology", []notemaster.Question{{Text: "old", Answer: "old"}})

	w := postForm(t, server.handleQuizStart, "/quiz/start", url.Values{
		"title":      {"Biology"},
		"regenerate": {"1"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/quiz/question", w.Header().Get("Location"))

	questions := server.store.GetQuestions("Biology")
	require.Len(t, questions, 3)
	assert.NotEqual(t, "old", questions[0].Text)
}
