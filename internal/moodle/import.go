package moodle

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

// ParseError means the document itself is malformed; no partial quiz is
// produced in that case.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "malformed quiz document: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ImportReport collects the recoverable issues of an import: skipped
// elements and warning cases worth surfacing to the author.
type ImportReport struct {
	Skipped  []string `json:"skipped,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ImportReport) skip(idx int, format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf("question %d: %s", idx, fmt.Sprintf(format, args...)))
}

func (r *ImportReport) warn(idx int, format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("question %d: %s", idx, fmt.Sprintf(format, args...)))
}

// Import parses a Moodle XML document into a canonical quiz. Malformed XML
// aborts the import; unsupported or unsalvageable question elements are
// skipped and reported. The external format carries no time limit, so the
// result never has one.
func Import(r io.Reader) (*quiz.Quiz, *ImportReport, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	report := &ImportReport{}
	out := &quiz.Quiz{}
	for i, xq := range doc.Questions {
		switch xq.Type {
		case "category":
			// Carries the topic; never emitted as a question.
			if xq.Category != nil {
				segs := strings.Split(xq.Category.Text.Value, "/")
				out.Topic = strings.TrimSpace(segs[len(segs)-1])
			}
			continue
		case "description":
			report.skip(i, "description items are not supported")
			continue
		}

		q, err := convertQuestion(xq)
		if err != nil {
			report.skip(i, "%v", err)
			continue
		}
		if q.Type == quiz.SingleChoice && noPositiveFraction(xq) {
			report.warn(i, "no answer has a positive fraction; assuming the first is correct")
		}

		valid, err := quiz.Validate(q)
		if err != nil {
			report.skip(i, "%v", err)
			continue
		}
		out.Questions = append(out.Questions, valid)
	}
	return out, report, nil
}

func convertQuestion(xq xmlQuestion) (quiz.Question, error) {
	raw := ""
	if xq.QuestionText != nil {
		raw = xq.QuestionText.Text.Value
	}
	q := quiz.Question{
		Text:   stripHTML(raw),
		Image:  firstImageSrc(raw),
		Points: roundGrade(xq.DefaultGrade),
	}
	if xq.GeneralFeedback != nil {
		q.Explanation = stripHTML(xq.GeneralFeedback.Text.Value)
	}

	switch xq.Type {
	case "multichoice":
		options := make([]string, len(xq.Answers))
		var correct []int
		for i, a := range xq.Answers {
			options[i] = stripHTML(a.Text.Value)
			if parseFraction(a.Fraction) > 0 {
				correct = append(correct, i)
			}
		}
		if strings.EqualFold(xq.Single, "true") {
			idx := 0
			if len(correct) > 0 {
				idx = correct[0]
			}
			q.Type = quiz.SingleChoice
			q.Data = &quiz.SingleChoiceData{Options: options, CorrectIndex: idx}
		} else {
			q.Type = quiz.MultipleChoice
			q.Data = &quiz.MultipleChoiceData{Options: options, CorrectIndices: correct}
		}

	case "truefalse":
		answer := false
		for _, a := range xq.Answers {
			if strings.EqualFold(strings.TrimSpace(stripHTML(a.Text.Value)), "true") && parseFraction(a.Fraction) > 0 {
				answer = true
			}
		}
		q.Type = quiz.TrueFalse
		q.Data = &quiz.TrueFalseData{CorrectAnswer: answer}

	case "numerical":
		if len(xq.Answers) == 0 {
			return quiz.Question{}, fmt.Errorf("numerical question has no answer")
		}
		a := xq.Answers[0]
		value, err := strconv.ParseFloat(strings.TrimSpace(a.Text.Value), 64)
		if err != nil {
			return quiz.Question{}, fmt.Errorf("numerical answer %q is not a number", a.Text.Value)
		}
		d := &quiz.NumericData{CorrectAnswer: value}
		if a.Tolerance != "" {
			d.Tolerance, _ = strconv.ParseFloat(strings.TrimSpace(a.Tolerance), 64)
		}
		if xq.Units != nil && len(xq.Units.Units) > 0 {
			d.Unit = strings.TrimSpace(xq.Units.Units[0].Name)
		}
		q.Type = quiz.Numeric
		q.Data = d

	case "matching":
		pairs := make([]quiz.Pair, len(xq.Subquestions))
		for i, sq := range xq.Subquestions {
			pairs[i] = quiz.Pair{
				Left:  stripHTML(sq.Text.Value),
				Right: stripHTML(sq.Answer.Text.Value),
			}
		}
		// The format encodes no shuffled mapping at parse time; the correct
		// mapping is the identity seeded by validation.
		q.Type = quiz.Matching
		q.Data = &quiz.MatchingData{Pairs: pairs}

	case "cloze":
		text, blanks := parseCloze(raw)
		q.Type = quiz.Cloze
		q.Data = &quiz.ClozeData{Text: stripHTML(text), Blanks: blanks}

	case "shortanswer", "essay":
		q.Type = quiz.Essay
		q.Data = &quiz.EssayData{
			ResponseFormat:     orDefault(xq.ResponseFormat, "editor"),
			ResponseRequired:   xq.ResponseRequired != "0",
			ResponseFieldLines: atoiDefault(xq.ResponseFieldLines, 15),
			MinWordLimit:       atoiDefault(xq.MinWordLimit, 0),
			MaxWordLimit:       atoiDefault(xq.MaxWordLimit, 0),
			Attachments:        atoiDefault(xq.Attachments, 0),
			MaxBytes:           atoiDefault(xq.MaxBytes, 0),
		}

	default:
		return quiz.Question{}, fmt.Errorf("unsupported type %q", xq.Type)
	}
	return q, nil
}

func noPositiveFraction(xq xmlQuestion) bool {
	for _, a := range xq.Answers {
		if parseFraction(a.Fraction) > 0 {
			return false
		}
	}
	return len(xq.Answers) > 0
}

func parseFraction(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// roundGrade rounds defaultgrade to the nearest integer; absent or zero
// grades fall back to the per-type default during validation.
func roundGrade(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
