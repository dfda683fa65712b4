package notemaster

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Evaluator scores a free-text answer against a reference answer. With a
// credential it delegates scoring to the text-generation service; without
// one it falls back to a local keyword-overlap heuristic. Either way the
// score lands in [0,5] and the caller never sees an error.
type Evaluator struct {
	client *openai.Client
	cfg    Config
	logger *LLMLogger
}

// NewEvaluator creates an evaluator for the configured service.
func NewEvaluator(cfg Config) *Evaluator {
	e := &Evaluator{cfg: cfg}
	if cfg.HasCredential() {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		e.client = openai.NewClientWithConfig(clientCfg)
	}
	return e
}

// SetLogger attaches a logger that records prompts and raw replies.
func (e *Evaluator) SetLogger(logger *LLMLogger) {
	e.logger = logger
}

// Evaluate scores userAnswer against referenceAnswer. A service or parse
// failure yields a neutral score of 3 with feedback labeled as an error
// fallback.
func (e *Evaluator) Evaluate(ctx context.Context, userAnswer, referenceAnswer string) Evaluation {
	if !e.cfg.HasCredential() {
		score, feedback := keywordOverlapScore(userAnswer, referenceAnswer)
		return Evaluation{Score: score, Feedback: feedback, Origin: OriginNoCredential}
	}

	evaluation, err := e.evaluate(ctx, userAnswer, referenceAnswer)
	if err != nil {
		log.Printf("Answer evaluation failed: %v", err)
		return Evaluation{
			Score:    3,
			Feedback: "Evaluation unavailable due to a service error; a neutral score was assigned.",
			Origin:   OriginFallback,
		}
	}
	return evaluation
}

func (e *Evaluator) evaluate(ctx context.Context, userAnswer, referenceAnswer string) (Evaluation, error) {
	prompt := buildEvaluationPrompt(userAnswer, referenceAnswer)

	if e.logger != nil {
		e.logger.LogLLMRequest("Evaluator", prompt)
	}

	resp, err := e.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: e.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to call evaluation service: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Evaluation{}, fmt.Errorf("no choices in evaluation reply")
	}

	reply := resp.Choices[0].Message.Content
	if e.logger != nil {
		e.logger.LogLLMResponse("Evaluator", reply)
	}

	score, feedback, err := parseEvaluationReply(reply)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Score: score, Feedback: feedback, Origin: OriginService}, nil
}

func buildEvaluationPrompt(userAnswer, referenceAnswer string) string {
	var sb strings.Builder
	sb.WriteString("You are a learning assistant that evaluates student answers.\n")
	sb.WriteString(fmt.Sprintf("Here is the correct answer to a question: %q\n", referenceAnswer))
	sb.WriteString(fmt.Sprintf("And here is the student's answer: %q\n\n", userAnswer))
	sb.WriteString("Grade the student's answer on a scale from 0 to 5, where 5 is perfect.\n")
	sb.WriteString("Also provide constructive feedback to help the student improve.\n")
	sb.WriteString("Return only a JSON object with two keys: 'score' (an integer from 0 to 5) and 'feedback' (text).")
	return sb.String()
}

// keywordOverlapScore is a deliberately crude bag-of-words baseline: the
// share of reference words that appear in the user answer, scaled to 5.
// No stemming, no synonyms, no semantics.
func keywordOverlapScore(userAnswer, referenceAnswer string) (int, string) {
	referenceWords := wordSet(referenceAnswer)
	userWords := wordSet(userAnswer)

	common := 0
	for word := range referenceWords {
		if userWords[word] {
			common++
		}
	}

	ratio := float64(common) / math.Max(1, float64(len(referenceWords)))
	score := clampScore(int(math.Round(ratio * 5)))

	feedback := "Automatic evaluation based on keyword matching."
	switch {
	case score >= 4:
		feedback += " Excellent answer!"
	case score >= 3:
		feedback += " Good answer, but a few elements are missing."
	case score >= 2:
		feedback += " Partial answer, several key elements are missing."
	default:
		feedback += " Incomplete answer, review the core concepts."
	}
	return score, feedback
}

func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		words[word] = true
	}
	return words
}
