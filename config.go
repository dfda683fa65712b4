package notemaster

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the OpenAI-compatible service used for question generation
// and answer evaluation.
const (
	DefaultBaseURL      = "https://openrouter.ai/api/v1"
	DefaultModel        = "deepseek/deepseek-chat"
	DefaultQuestionsDir = "questions"
)

// Config holds the service credential and paths used by the application.
type Config struct {
	// APIKey is the credential for the text-generation service. When
	// empty, generation and evaluation run in degraded local mode.
	APIKey string
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string
	// Model is the chat completion model name.
	Model string
	// QuestionsDir is where per-note question cache files are written.
	QuestionsDir string
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment. A missing credential is not an error: the application
// stays usable with locally generated placeholders.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIKey:       os.Getenv("DEEPSEEK_KEY"),
		BaseURL:      os.Getenv("NOTEMASTER_BASE_URL"),
		Model:        os.Getenv("NOTEMASTER_MODEL"),
		QuestionsDir: os.Getenv("NOTEMASTER_QUESTIONS_DIR"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.QuestionsDir == "" {
		cfg.QuestionsDir = DefaultQuestionsDir
	}
	return cfg
}

// HasCredential reports whether a usable API key is configured.
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
