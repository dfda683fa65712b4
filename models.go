package notemaster

// Note represents a user-authored text unit identified by a unique title.
type Note struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Question represents a single open-ended question with its reference answer.
type Question struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// Attempt records one submitted answer to one question. The question text
// and reference answer are copied into the attempt, so it stays valid after
// the question set is regenerated or the note deleted.
type Attempt struct {
	Timestamp     string `json:"timestamp"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
}

// Origin identifies how a generation or evaluation result was produced.
type Origin string

const (
	// OriginService marks a result produced by the external service.
	OriginService Origin = "service"
	// OriginNoCredential marks a placeholder result produced because no
	// API key is configured.
	OriginNoCredential Origin = "no_credential"
	// OriginFallback marks a result produced after a service call failed.
	OriginFallback Origin = "fallback"
)

// QuestionSet is the outcome of one generation request.
type QuestionSet struct {
	Questions []Question `json:"questions"`
	Origin    Origin     `json:"origin"`
}

// Evaluation is the outcome of scoring one answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Origin   Origin `json:"origin"`
}

// MinScore and MaxScore bound every score in the system.
const (
	MinScore = 0
	MaxScore = 5
)

func clampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
