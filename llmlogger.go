package notemaster

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger records every prompt sent to the text-generation service and
// every raw reply, one log file per note. Reviewing these files is how
// fallback results are told apart from real service output after the fact.
type LLMLogger struct {
	file  *os.File
	mu    sync.Mutex
	title string
}

// NewLLMLogger creates a logger writing to log/<title>.log.
func NewLLMLogger(title string) (*LLMLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", cacheFileName(title)+".log")
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:  file,
		title: title,
	}

	logger.Logf("=== Service Interaction Log ===\n")
	logger.Logf("Note: %s\n", title)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("===============================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogLLMRequest logs a prompt about to be sent to the service.
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("====================\n\n")
}

// LogLLMResponse logs a raw reply received from the service.
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("=====================\n\n")
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		return ll.file.Close()
	}
	return nil
}
