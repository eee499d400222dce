package grading

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

// Result is the outcome of grading a single question response.
type Result struct {
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"points_awarded"`
	// NeedsManual marks responses the engine never auto-grades (essay).
	NeedsManual bool `json:"needs_manual,omitempty"`
}

// Strategy grades one question type.
type Strategy interface {
	Grade(q quiz.Question, response any) Result
}

// Grader routes by question type to the correct Strategy. Learner responses
// are untrusted input: an undecidable response grades incorrect, never errors.
type Grader struct {
	strategies map[quiz.QuestionType]Strategy
}

func NewGrader() *Grader {
	return &Grader{
		strategies: map[quiz.QuestionType]Strategy{
			quiz.SingleChoice:   singleChoiceStrategy{},
			quiz.MultipleChoice: multipleChoiceStrategy{},
			quiz.TrueFalse:      trueFalseStrategy{},
			quiz.Numeric:        numericStrategy{},
			quiz.Matching:       matchingStrategy{},
			quiz.Cloze:          clozeStrategy{},
			quiz.Essay:          essayStrategy{},
		},
	}
}

func (g *Grader) Grade(q quiz.Question, response any) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}
	}
	res := s.Grade(q, response)
	if res.Correct {
		res.PointsAwarded = q.Points
	}
	return res
}

// GradeRaw decodes a JSON-encoded response before grading. A response that
// does not decode grades incorrect.
func (g *Grader) GradeRaw(q quiz.Question, raw json.RawMessage) Result {
	if len(raw) == 0 {
		return g.Grade(q, nil)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return g.Grade(q, nil)
	}
	return g.Grade(q, v)
}

// ScoreAttempt grades every question of the quiz against the attempt's
// answers and fills in Score and TotalPoints. Unanswered questions count
// toward TotalPoints only.
func (g *Grader) ScoreAttempt(qz *quiz.Quiz, a *quiz.Attempt) map[string]Result {
	results := make(map[string]Result, len(qz.Questions))
	score := 0
	for _, q := range qz.Questions {
		res := g.GradeRaw(q, a.Answers[q.ID])
		results[q.ID] = res
		score += res.PointsAwarded
	}
	a.Score = score
	a.TotalPoints = qz.TotalPoints()
	return results
}

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.SingleChoiceData)
	if !ok {
		return Result{}
	}
	idx, ok := toIndex(response)
	return Result{Correct: ok && idx == d.CorrectIndex}
}

type multipleChoiceStrategy struct{}

func (multipleChoiceStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.MultipleChoiceData)
	if !ok {
		return Result{}
	}
	got, ok := toIndexSlice(response)
	if !ok || len(got) != len(d.CorrectIndices) {
		return Result{}
	}
	// Order-independent comparison; duplicates are not collapsed, so a
	// duplicated index fails on length against the correct set.
	want := append([]int(nil), d.CorrectIndices...)
	sort.Ints(got)
	sort.Ints(want)
	for i := range got {
		if got[i] != want[i] {
			return Result{}
		}
	}
	return Result{Correct: true}
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.TrueFalseData)
	if !ok {
		return Result{}
	}
	b, ok := response.(bool)
	return Result{Correct: ok && b == d.CorrectAnswer}
}

type numericStrategy struct{}

func (numericStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.NumericData)
	if !ok {
		return Result{}
	}
	v, ok := toFloat(response)
	if !ok {
		return Result{}
	}
	return Result{Correct: math.Abs(v-d.CorrectAnswer) < 0.01}
}

type matchingStrategy struct{}

func (matchingStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.MatchingData)
	if !ok {
		return Result{}
	}
	got, ok := toIndexSlice(response)
	if !ok || len(got) != len(d.CorrectPairs) {
		return Result{}
	}
	// All pairs must match; no partial credit at the question level.
	for i, r := range d.CorrectPairs {
		if got[i] != r {
			return Result{}
		}
	}
	return Result{Correct: true}
}

type clozeStrategy struct{}

func (clozeStrategy) Grade(q quiz.Question, response any) Result {
	d, ok := q.Data.(*quiz.ClozeData)
	if !ok {
		return Result{}
	}
	arr, ok := response.([]any)
	if !ok || len(arr) != len(d.Blanks) {
		return Result{}
	}
	for i, b := range d.Blanks {
		switch b.Kind {
		case quiz.BlankDropdown:
			idx, ok := toIndex(arr[i])
			if !ok || idx != b.CorrectIndex {
				return Result{}
			}
		case quiz.BlankText:
			s, ok := arr[i].(string)
			if !ok {
				return Result{}
			}
			want := b.CorrectAnswer
			if !b.CaseSensitive {
				s = strings.ToLower(s)
				want = strings.ToLower(want)
			}
			if strings.TrimSpace(s) != strings.TrimSpace(want) {
				return Result{}
			}
		default:
			return Result{}
		}
	}
	return Result{Correct: true}
}

type essayStrategy struct{}

func (essayStrategy) Grade(quiz.Question, any) Result {
	return Result{NeedsManual: true}
}

// --- response coercion helpers ---

// toIndex accepts ints and integral JSON numbers.
func toIndex(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func toIndexSlice(v any) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		return append([]int(nil), t...), true
	case []any:
		out := make([]int, 0, len(t))
		for _, e := range t {
			i, ok := toIndex(e)
			if !ok {
				return nil, false
			}
			out = append(out, i)
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
