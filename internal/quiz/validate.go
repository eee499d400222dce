package quiz

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError names the field that violated a structural constraint.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question: %s: %s", e.Field, e.Constraint)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Constraint: fmt.Sprintf(format, args...)}
}

var defaultPoints = map[QuestionType]int{
	SingleChoice:   1,
	MultipleChoice: 2,
	TrueFalse:      1,
	Numeric:        2,
	Matching:       3,
	Cloze:          2,
	Essay:          5,
}

// DefaultPoints returns the per-type point weight used when a question
// carries no explicit weight.
func DefaultPoints(t QuestionType) int {
	if p, ok := defaultPoints[t]; ok {
		return p
	}
	return 1
}

// Validate checks a candidate question against the structural invariants of
// its type and returns a normalized copy: options and pair text trimmed,
// missing points defaulted per type, optional fields forced to concrete
// defaults. The input is not mutated.
func Validate(q Question) (Question, error) {
	if !KnownType(q.Type) {
		return Question{}, invalid("type", "unknown question type %q", q.Type)
	}
	if q.Points < 0 {
		return Question{}, invalid("points", "must be positive")
	}
	if q.Points == 0 {
		q.Points = DefaultPoints(q.Type)
	}
	if q.Data == nil {
		d, _ := newData(q.Type)
		q.Data = d
	}

	switch d := q.Data.(type) {
	case *SingleChoiceData:
		opts, err := validOptions(d.Options)
		if err != nil {
			return Question{}, err
		}
		if d.CorrectIndex < 0 || d.CorrectIndex >= len(opts) {
			return Question{}, invalid("correct_index", "index %d out of range [0,%d)", d.CorrectIndex, len(opts))
		}
		q.Data = &SingleChoiceData{Options: opts, CorrectIndex: d.CorrectIndex}

	case *MultipleChoiceData:
		opts, err := validOptions(d.Options)
		if err != nil {
			return Question{}, err
		}
		if len(d.CorrectIndices) == 0 {
			return Question{}, invalid("correct_indices", "must not be empty")
		}
		for _, i := range d.CorrectIndices {
			if i < 0 || i >= len(opts) {
				return Question{}, invalid("correct_indices", "index %d out of range [0,%d)", i, len(opts))
			}
		}
		q.Data = &MultipleChoiceData{Options: opts, CorrectIndices: append([]int(nil), d.CorrectIndices...)}

	case *TrueFalseData:
		q.Data = &TrueFalseData{CorrectAnswer: d.CorrectAnswer}

	case *NumericData:
		if math.IsNaN(d.CorrectAnswer) || math.IsInf(d.CorrectAnswer, 0) {
			return Question{}, invalid("correct_answer", "must be a finite number")
		}
		q.Data = &NumericData{CorrectAnswer: d.CorrectAnswer, Tolerance: d.Tolerance, Unit: strings.TrimSpace(d.Unit)}

	case *MatchingData:
		if len(d.Pairs) < 2 {
			return Question{}, invalid("pairs", "need at least 2 pairs, got %d", len(d.Pairs))
		}
		pairs := make([]Pair, len(d.Pairs))
		for i, p := range d.Pairs {
			left := strings.TrimSpace(p.Left)
			right := strings.TrimSpace(p.Right)
			if left == "" || right == "" {
				return Question{}, invalid("pairs", "pair %d has an empty side", i)
			}
			pairs[i] = Pair{Left: left, Right: right}
		}
		correct := d.CorrectPairs
		if len(correct) == 0 {
			correct = identity(len(pairs))
		}
		if len(correct) != len(pairs) {
			return Question{}, invalid("correct_pairs", "length %d does not match %d pairs", len(correct), len(pairs))
		}
		for i, r := range correct {
			if r < 0 || r >= len(pairs) {
				return Question{}, invalid("correct_pairs", "entry %d: index %d out of range", i, r)
			}
		}
		q.Data = &MatchingData{Pairs: pairs, CorrectPairs: append([]int(nil), correct...)}

	case *ClozeData:
		if len(d.Blanks) == 0 {
			return Question{}, invalid("blanks", "must not be empty")
		}
		blanks := make([]Blank, len(d.Blanks))
		for i, b := range d.Blanks {
			switch b.Kind {
			case BlankDropdown:
				if len(b.Options) < 2 {
					return Question{}, invalid("blanks", "blank %d: need at least 2 options", i)
				}
				if b.CorrectIndex < 0 || b.CorrectIndex >= len(b.Options) {
					return Question{}, invalid("blanks", "blank %d: correct_index out of range", i)
				}
			case BlankText:
				if strings.TrimSpace(b.CorrectAnswer) == "" {
					return Question{}, invalid("blanks", "blank %d: correct_answer must not be empty", i)
				}
			default:
				return Question{}, invalid("blanks", "blank %d: unknown kind %q", i, b.Kind)
			}
			blanks[i] = b
		}
		q.Data = &ClozeData{Text: d.Text, Blanks: blanks}
		// Display text is derived from the payload text and must stay in sync.
		q.Text = d.Text

	case *EssayData:
		e := *d
		if e.ResponseFormat == "" {
			e.ResponseFormat = "editor"
		}
		if e.ResponseFieldLines <= 0 {
			e.ResponseFieldLines = 15
		}
		q.Data = &e

	default:
		return Question{}, invalid("data", "payload does not match type %q", q.Type)
	}
	return q, nil
}

func validOptions(options []string) ([]string, error) {
	if len(options) < 2 || len(options) > 6 {
		return nil, invalid("options", "need between 2 and 6 options, got %d", len(options))
	}
	out := make([]string, len(options))
	for i, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, invalid("options", "option %d is empty", i)
		}
		out[i] = o
	}
	return out, nil
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
