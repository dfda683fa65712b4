package notemaster

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Models frequently wrap their JSON output in a fenced code block even
// when told not to. extractJSONPayload pulls the innermost payload out of
// a ```json fence when one is present, otherwise treats the whole reply
// as the payload, stripping any stray fence markers either way.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

func extractJSONPayload(reply string) string {
	payload := reply
	if m := fencedJSON.FindStringSubmatch(reply); m != nil {
		payload = m[1]
	}
	payload = strings.ReplaceAll(payload, "```", "")
	return strings.TrimSpace(payload)
}

// parseQuestionReply parses a generation reply into questions. The payload
// may be a raw JSON list of question objects or an object with a
// "questions" key holding that list.
func parseQuestionReply(reply string) ([]Question, error) {
	payload := []byte(extractJSONPayload(reply))

	var questions []Question
	if err := json.Unmarshal(payload, &questions); err == nil {
		return questions, nil
	}

	var wrapper struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse questions JSON: %w", err)
	}
	return wrapper.Questions, nil
}

// parseEvaluationReply parses an evaluation reply: a JSON object with
// "score" and "feedback" keys. A missing score defaults to 0 and missing
// feedback to a fixed string; the score is clamped into [0,5].
func parseEvaluationReply(reply string) (int, string, error) {
	payload := []byte(extractJSONPayload(reply))

	var obj struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return 0, "", fmt.Errorf("failed to parse evaluation JSON: %w", err)
	}

	score := 0
	if obj.Score != nil {
		score = clampScore(int(math.Round(*obj.Score)))
	}
	feedback := "No feedback available."
	if obj.Feedback != nil {
		feedback = *obj.Feedback
	}
	return score, feedback, nil
}
