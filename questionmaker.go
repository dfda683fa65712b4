package notemaster

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// QuestionMaker turns a note's content into open-ended question/answer
// pairs via an OpenAI-compatible chat completion service. When no
// credential is configured, or when the service call fails, it degrades
// to locally built placeholder questions instead of returning an error.
type QuestionMaker struct {
	client *openai.Client
	cfg    Config
	logger *LLMLogger
}

// NewQuestionMaker creates a question maker for the configured service.
func NewQuestionMaker(cfg Config) *QuestionMaker {
	qm := &QuestionMaker{cfg: cfg}
	if cfg.HasCredential() {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		qm.client = openai.NewClientWithConfig(clientCfg)
	}
	return qm
}

// SetLogger attaches a logger that records prompts and raw replies.
func (qm *QuestionMaker) SetLogger(logger *LLMLogger) {
	qm.logger = logger
}

// Generate produces a question set for a note. It never fails: without a
// credential it returns labeled placeholders, and any service or parse
// error yields a fallback set with distinct wording. Successful sets are
// written through to the per-note question cache.
func (qm *QuestionMaker) Generate(ctx context.Context, title, content string) QuestionSet {
	if !qm.cfg.HasCredential() {
		VerboseLog("No API key configured, returning placeholder questions for %q", title)
		return QuestionSet{Questions: placeholderQuestions(title), Origin: OriginNoCredential}
	}

	questions, err := qm.generate(ctx, content)
	if err != nil {
		log.Printf("Question generation failed for %q: %v", title, err)
		return QuestionSet{Questions: fallbackQuestions(title), Origin: OriginFallback}
	}

	if err := WriteQuestionCache(qm.cfg.QuestionsDir, title, questions); err != nil {
		// The cache is a convenience; the generated set is still good.
		log.Printf("Failed to cache questions for %q: %v", title, err)
	}

	VerboseLog("Generated %d questions for %q", len(questions), title)
	return QuestionSet{Questions: questions, Origin: OriginService}
}

func (qm *QuestionMaker) generate(ctx context.Context, content string) ([]Question, error) {
	prompt := buildGenerationPrompt(content)

	if qm.logger != nil {
		qm.logger.LogLLMRequest("QuestionMaker", prompt)
	}

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation service: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in generation reply")
	}

	reply := resp.Choices[0].Message.Content
	if qm.logger != nil {
		qm.logger.LogLLMResponse("QuestionMaker", reply)
	}

	questions, err := parseQuestionReply(reply)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("generation reply contained no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("generation reply question %d is missing text or answer", i+1)
		}
	}
	return questions, nil
}

func buildGenerationPrompt(content string) string {
	var sb strings.Builder
	sb.WriteString("From the following text, create relatively open-ended questions that support active learning. ")
	sb.WriteString("Choose an adequate number of questions for the length of the text.\n")
	sb.WriteString("For each question, return a JSON object with two keys: ")
	sb.WriteString("'text' for the question and 'answer' for the correct answer.\n")
	sb.WriteString("Text: ")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString("Return only JSON, nothing else.")
	return sb.String()
}

// placeholderQuestions is the degraded no-credential mode: the UI stays
// usable offline with a fixed, clearly labeled set.
func placeholderQuestions(title string) []Question {
	questions := make([]Question, 3)
	for i := range questions {
		questions[i] = Question{
			Text:   fmt.Sprintf("Auto-generated question %d for %s", i+1, title),
			Answer: fmt.Sprintf("Answer to question %d. This answer was generated automatically because no API key is configured.", i+1),
		}
	}
	return questions
}

// fallbackQuestions is the tried-and-failed set; its wording is distinct
// from the no-credential placeholders so log review can tell them apart.
func fallbackQuestions(title string) []Question {
	questions := make([]Question, 2)
	for i := range questions {
		questions[i] = Question{
			Text:   fmt.Sprintf("Backup question %d for %s", i+1, title),
			Answer: fmt.Sprintf("Answer to question %d. This answer was generated automatically after a generation error.", i+1),
		}
	}
	return questions
}
