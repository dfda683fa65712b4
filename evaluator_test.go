package notemaster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An empty APIKey selects the local keyword-overlap heuristic.
func localEvaluator() *Evaluator {
	return NewEvaluator(Config{})
}

// chatCompletionStub serves a chat completion whose assistant message is
// the given content, standing in for the real service.
func chatCompletionStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode stub response: %v", err)
		}
	}))
}

func TestEvaluateIdenticalAnswerScoresFive(t *testing.T) {
	evaluation := localEvaluator().Evaluate(context.Background(),
		"Mitochondria produce ATP", "Mitochondria produce ATP")

	assert.Equal(t, 5, evaluation.Score)
	assert.NotEmpty(t, evaluation.Feedback)
	assert.Equal(t, OriginNoCredential, evaluation.Origin)
}

func TestEvaluateScoreAlwaysInRange(t *testing.T) {
	cases := []struct {
		user, reference string
	}{
		{"", "Mitochondria produce ATP"},
		{"completely unrelated words", "Mitochondria produce ATP"},
		{"Mitochondria produce ATP via oxidative phosphorylation", "ATP"},
		{"ATP ATP ATP ATP ATP", "ATP"},
		{"", ""},
	}

	for _, tc := range cases {
		evaluation := localEvaluator().Evaluate(context.Background(), tc.user, tc.reference)
		assert.GreaterOrEqual(t, evaluation.Score, MinScore, "user=%q ref=%q", tc.user, tc.reference)
		assert.LessOrEqual(t, evaluation.Score, MaxScore, "user=%q ref=%q", tc.user, tc.reference)
		assert.NotEmpty(t, evaluation.Feedback)
	}
}

func TestEvaluatePartialOverlap(t *testing.T) {
	// One of three reference words is present: round(1/3*5) = 2.
	evaluation := localEvaluator().Evaluate(context.Background(),
		"ATP", "Mitochondria produce ATP")

	assert.Equal(t, 2, evaluation.Score)
	assert.GreaterOrEqual(t, evaluation.Score, 1)
}

func TestEvaluateNoOverlapScoresZero(t *testing.T) {
	evaluation := localEvaluator().Evaluate(context.Background(),
		"photosynthesis in plants", "Mitochondria produce ATP")

	assert.Equal(t, 0, evaluation.Score)
}

func TestEvaluateCaseInsensitive(t *testing.T) {
	evaluation := localEvaluator().Evaluate(context.Background(),
		"MITOCHONDRIA PRODUCE atp", "mitochondria produce ATP")

	assert.Equal(t, 5, evaluation.Score)
}

func TestEvaluateFeedbackBands(t *testing.T) {
	cases := []struct {
		name      string
		user      string
		reference string
		wantScore int
		wantTail  string
	}{
		{"excellent", "alpha beta gamma delta", "alpha beta gamma delta", 5, "Excellent"},
		{"good", "alpha beta gamma", "alpha beta gamma delta epsilon", 3, "Good answer"},
		{"partial", "alpha beta", "alpha beta gamma delta epsilon", 2, "Partial answer"},
		{"incomplete", "alpha", "alpha beta gamma delta epsilon", 1, "Incomplete answer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, feedback := keywordOverlapScore(tc.user, tc.reference)
			assert.Equal(t, tc.wantScore, score)
			assert.True(t, strings.Contains(feedback, tc.wantTail),
				"feedback %q should contain %q", feedback, tc.wantTail)
		})
	}
}

func TestEvaluateDelegatedSuccess(t *testing.T) {
	srv := chatCompletionStub(t, "```json\n{\"score\": 4, \"feedback\": \"Solid answer.\"}\n```")
	defer srv.Close()

	evaluator := NewEvaluator(Config{APIKey: "test-key", BaseURL: srv.URL})
	evaluation := evaluator.Evaluate(context.Background(), "ATP", "Mitochondria produce ATP")

	assert.Equal(t, OriginService, evaluation.Origin)
	assert.Equal(t, 4, evaluation.Score)
	assert.Equal(t, "Solid answer.", evaluation.Feedback)
}

// With a credential but an unreachable endpoint, the delegated path fails
// and must surface as the tagged neutral fallback, never as an error.
func TestEvaluateServiceFailureFallsBackToNeutral(t *testing.T) {
	evaluator := NewEvaluator(Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})

	evaluation := evaluator.Evaluate(context.Background(), "ATP", "Mitochondria produce ATP")

	assert.Equal(t, OriginFallback, evaluation.Origin)
	assert.Equal(t, 3, evaluation.Score)
	assert.Contains(t, evaluation.Feedback, "error")
}

// A reply that carries no JSON is an evaluation failure too, with the
// same neutral fallback.
func TestEvaluateMalformedReplyFallsBack(t *testing.T) {
	srv := chatCompletionStub(t, "I would give this a 4 out of 5.")
	defer srv.Close()

	evaluator := NewEvaluator(Config{APIKey: "test-key", BaseURL: srv.URL})
	evaluation := evaluator.Evaluate(context.Background(), "ATP", "Mitochondria produce ATP")

	assert.Equal(t, OriginFallback, evaluation.Origin)
	assert.Equal(t, 3, evaluation.Score)
}

func TestParseEvaluationReply(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		score, feedback, err := parseEvaluationReply(`{"score": 4, "feedback": "well done"}`)
		require.NoError(t, err)
		assert.Equal(t, 4, score)
		assert.Equal(t, "well done", feedback)
	})

	t.Run("fenced object", func(t *testing.T) {
		reply := "Here is my evaluation:\n```json\n{\"score\": 2, \"feedback\": \"missing detail\"}\n```"
		score, feedback, err := parseEvaluationReply(reply)
		require.NoError(t, err)
		assert.Equal(t, 2, score)
		assert.Equal(t, "missing detail", feedback)
	})

	t.Run("missing score defaults to zero", func(t *testing.T) {
		score, feedback, err := parseEvaluationReply(`{"feedback": "only feedback"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, score)
		assert.Equal(t, "only feedback", feedback)
	})

	t.Run("missing feedback defaults to fixed string", func(t *testing.T) {
		score, feedback, err := parseEvaluationReply(`{"score": 3}`)
		require.NoError(t, err)
		assert.Equal(t, 3, score)
		assert.Equal(t, "No feedback available.", feedback)
	})

	t.Run("out of range score is clamped", func(t *testing.T) {
		score, _, err := parseEvaluationReply(`{"score": 11, "feedback": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, 5, score)

		score, _, err = parseEvaluationReply(`{"score": -3, "feedback": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, score)
	})

	t.Run("malformed reply errors", func(t *testing.T) {
		_, _, err := parseEvaluationReply("I would give this a 4 out of 5.")
		assert.Error(t, err)
	})
}
