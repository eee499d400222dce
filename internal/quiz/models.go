package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Numeric        QuestionType = "numeric"
	Matching       QuestionType = "matching"
	Cloze          QuestionType = "cloze"
	Essay          QuestionType = "essay"
)

// Types lists every known question type, in display order.
var Types = []QuestionType{SingleChoice, MultipleChoice, TrueFalse, Numeric, Matching, Cloze, Essay}

func KnownType(t QuestionType) bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Data is the per-type payload of a Question. Exactly one concrete type
// exists per QuestionType; consumers switch exhaustively on it.
type Data interface {
	questionData()
}

type SingleChoiceData struct {
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type MultipleChoiceData struct {
	Options        []string `json:"options"`
	CorrectIndices []int    `json:"correct_indices"`
}

type TrueFalseData struct {
	CorrectAnswer bool `json:"correct_answer"`
}

type NumericData struct {
	CorrectAnswer float64 `json:"correct_answer"`
	Tolerance     float64 `json:"tolerance,omitempty"`
	Unit          string  `json:"unit"`
}

type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchingData struct {
	Pairs []Pair `json:"pairs"`
	// CorrectPairs[i] is the right-column index that pairs[i].Left maps to.
	CorrectPairs []int `json:"correct_pairs"`
}

type BlankKind string

const (
	BlankDropdown BlankKind = "dropdown"
	BlankText     BlankKind = "text"
)

type Blank struct {
	Kind          BlankKind `json:"kind"`
	Options       []string  `json:"options,omitempty"`
	CorrectIndex  int       `json:"correct_index,omitempty"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	CaseSensitive bool      `json:"case_sensitive,omitempty"`
}

type ClozeData struct {
	// Text carries zero-based {i} placeholders, one per blank.
	Text   string  `json:"text"`
	Blanks []Blank `json:"blanks"`
}

type EssayData struct {
	ResponseFormat     string `json:"response_format"`
	ResponseRequired   bool   `json:"response_required"`
	ResponseFieldLines int    `json:"response_field_lines"`
	MinWordLimit       int    `json:"min_word_limit,omitempty"`
	MaxWordLimit       int    `json:"max_word_limit,omitempty"`
	Attachments        int    `json:"attachments,omitempty"`
	MaxBytes           int    `json:"max_bytes,omitempty"`
}

func (*SingleChoiceData) questionData()   {}
func (*MultipleChoiceData) questionData() {}
func (*TrueFalseData) questionData()      {}
func (*NumericData) questionData()        {}
func (*MatchingData) questionData()       {}
func (*ClozeData) questionData()          {}
func (*EssayData) questionData()          {}

// UnmarshalJSON accepts the correct answer as a number or a numeric string.
// An unparsable string is stored as NaN so validation can reject it.
func (d *NumericData) UnmarshalJSON(b []byte) error {
	var raw struct {
		CorrectAnswer json.RawMessage `json:"correct_answer"`
		Tolerance     float64         `json:"tolerance"`
		Unit          string          `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Tolerance = raw.Tolerance
	d.Unit = raw.Unit
	d.CorrectAnswer = math.NaN()
	if len(raw.CorrectAnswer) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw.CorrectAnswer, &f); err == nil {
		d.CorrectAnswer = f
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.CorrectAnswer, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			d.CorrectAnswer = f
		}
	}
	return nil
}

type Question struct {
	ID          string
	Type        QuestionType
	Text        string
	Image       string
	Points      int
	Explanation string
	Data        Data
}

type questionJSON struct {
	ID          string          `json:"id,omitempty"`
	Type        QuestionType    `json:"type"`
	Text        string          `json:"text"`
	Image       string          `json:"image,omitempty"`
	Points      int             `json:"points,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(q.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Text:        q.Text,
		Image:       q.Image,
		Points:      q.Points,
		Explanation: q.Explanation,
		Data:        data,
	})
}

func (q *Question) UnmarshalJSON(b []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := newData(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			return err
		}
	}
	q.ID = raw.ID
	q.Type = raw.Type
	q.Text = raw.Text
	q.Image = raw.Image
	q.Points = raw.Points
	q.Explanation = raw.Explanation
	q.Data = data
	return nil
}

func newData(t QuestionType) (Data, error) {
	switch t {
	case SingleChoice:
		return &SingleChoiceData{}, nil
	case MultipleChoice:
		return &MultipleChoiceData{}, nil
	case TrueFalse:
		return &TrueFalseData{}, nil
	case Numeric:
		return &NumericData{CorrectAnswer: math.NaN()}, nil
	case Matching:
		return &MatchingData{}, nil
	case Cloze:
		return &ClozeData{}, nil
	case Essay:
		return &EssayData{}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", t)
	}
}

type Quiz struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title"`
	Topic        string     `json:"topic"`
	Description  string     `json:"description"`
	TimeLimitMin *int       `json:"time_limit_min,omitempty"`
	Questions    []Question `json:"questions"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// TotalPoints sums the point weight of every question, answered or not.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

type Attempt struct {
	ID           string                     `json:"id"`
	QuizID       string                     `json:"quiz_id"`
	UserID       string                     `json:"user_id"`
	Status       string                     `json:"status"` // in_progress|submitted
	Answers      map[string]json.RawMessage `json:"answers"`
	TimeSpentSec int                        `json:"time_spent_sec"`
	Score        int                        `json:"score"`
	TotalPoints  int                        `json:"total_points"`
	StartedAt    int64                      `json:"started_at,omitempty"`
	SubmittedAt  int64                      `json:"submitted_at,omitempty"`
}
