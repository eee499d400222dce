// Package genai calls the external content generator and repairs its
// loosely structured output into canonical questions.
package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

// HardFailure aborts a whole generation batch: the payload is unparsable,
// has no questions array, or no question survived validation.
type HardFailure struct {
	Reason string
}

func (e *HardFailure) Error() string { return "unusable generated content: " + e.Reason }

// Generated is the surviving subset of a generation batch, which may be
// smaller than requested.
type Generated struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []quiz.Question `json:"questions"`
	Dropped     []string        `json:"dropped,omitempty"`
}

// ValidateGenerated turns a free-text generator response into validated
// questions. Candidates outside allowedTypes or failing their structural
// check even after repair are dropped with a warning; the call fails only
// when nothing survives.
func ValidateGenerated(raw string, allowedTypes []quiz.QuestionType) (*Generated, error) {
	blob, err := extractJSON(raw)
	if err != nil {
		return nil, &HardFailure{Reason: err.Error()}
	}

	var payload struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Questions   []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(blob, &payload); err != nil {
		return nil, &HardFailure{Reason: "payload is not a quiz object: " + err.Error()}
	}
	if payload.Questions == nil {
		return nil, &HardFailure{Reason: "payload has no questions array"}
	}

	allowed := make(map[quiz.QuestionType]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}

	out := &Generated{Title: payload.Title, Description: payload.Description}
	for i, rawQ := range payload.Questions {
		q, err := repairQuestion(rawQ, allowed)
		if err != nil {
			out.Dropped = append(out.Dropped, fmt.Sprintf("question %d: %v", i, err))
			continue
		}
		out.Questions = append(out.Questions, q)
	}
	if len(out.Questions) == 0 {
		return nil, &HardFailure{Reason: "no generated question survived validation"}
	}
	return out, nil
}

// repairQuestion applies generous per-type defaults before the standard
// structural validation. Missing points, identity matching pairs, numeric
// string coercion and essay response defaults are all repaired rather than
// rejected.
func repairQuestion(raw json.RawMessage, allowed map[quiz.QuestionType]bool) (quiz.Question, error) {
	var q quiz.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return quiz.Question{}, err
	}
	if len(allowed) > 0 && !allowed[q.Type] {
		return quiz.Question{}, fmt.Errorf("type %q is not allowed", q.Type)
	}

	if d, ok := q.Data.(*quiz.EssayData); ok {
		// The bool zero value is indistinguishable from an omitted field, so
		// requiredness defaults from the raw payload.
		if !hasDataKey(raw, "response_required") {
			d.ResponseRequired = true
		}
	}
	return quiz.Validate(q)
}

func hasDataKey(raw json.RawMessage, key string) bool {
	var outer struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return false
	}
	_, ok := outer.Data[key]
	return ok
}

// extractJSON isolates the lenient recovery path for generator output. The
// strict fast path takes the response as-is; the fallback strips code-fence
// markers and slices between the first '{' and the last '}' to shed any
// surrounding prose.
func extractJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	cleaned := stripFences(trimmed)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("response JSON does not parse")
	}
	return json.RawMessage(candidate), nil
}

func stripFences(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
