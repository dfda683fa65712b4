package notemaster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Question cache files: one JSON array per note title, written as a side
// effect of successful generation. The store remains the source of truth;
// the files only let a later session reload a generated set without
// another service call.

// cacheFileName derives a file name from a note title. Titles are free
// text, so path separators are flattened.
func cacheFileName(title string) string {
	name := strings.ReplaceAll(title, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name + ".json"
}

// WriteQuestionCache writes a note's question set to its cache file,
// overwriting any prior file for that title.
func WriteQuestionCache(dir, title string, questions []Question) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create questions directory: %w", err)
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	path := filepath.Join(dir, cacheFileName(title))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write question cache: %w", err)
	}
	return nil
}

// LoadCachedQuestions reads a note's question cache file. A missing file
// is not an error: it returns an empty set.
func LoadCachedQuestions(dir, title string) ([]Question, error) {
	path := filepath.Join(dir, cacheFileName(title))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read question cache: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse question cache: %w", err)
	}
	return questions, nil
}
