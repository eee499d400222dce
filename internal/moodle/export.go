package moodle

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

// ErrEmptyQuiz rejects exporting a quiz with nothing to emit.
var ErrEmptyQuiz = errors.New("quiz has no exportable questions")

// Export serializes a canonical quiz to a Moodle XML document. Export
// operates on previously validated records only; a malformed record is a
// programmer error and is surfaced, never repaired or skipped.
func Export(q *quiz.Quiz) ([]byte, error) {
	if len(q.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}

	doc := document{}
	if q.Topic != "" {
		doc.Questions = append(doc.Questions, xmlQuestion{
			Type:     "category",
			Category: &richText{Text: text("$course$/" + q.Topic)},
		})
	}
	for i, question := range q.Questions {
		xq, err := buildQuestion(question)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		doc.Questions = append(doc.Questions, xq)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func buildQuestion(q quiz.Question) (xmlQuestion, error) {
	xq := xmlQuestion{
		Name:         rich(questionName(q.Text)),
		QuestionText: rich(questionHTML(q)),
		DefaultGrade: strconv.Itoa(q.Points),
	}
	if q.Explanation != "" {
		xq.GeneralFeedback = rich(q.Explanation)
	}

	switch d := q.Data.(type) {
	case *quiz.SingleChoiceData:
		xq.Type = "multichoice"
		xq.Single = "true"
		xq.ShuffleAnswers = "true"
		xq.AnswerNumbering = "abc"
		for i, opt := range d.Options {
			xq.Answers = append(xq.Answers, choiceAnswer(opt, i == d.CorrectIndex, 100, q.Explanation))
		}

	case *quiz.MultipleChoiceData:
		if len(d.CorrectIndices) == 0 {
			return xmlQuestion{}, errors.New("multiple_choice has no correct indices")
		}
		xq.Type = "multichoice"
		xq.Single = "false"
		xq.ShuffleAnswers = "true"
		xq.AnswerNumbering = "abc"
		// Split credit so selecting exactly the correct set accumulates to
		// 100% in the external grader.
		share := int(math.Round(100 / float64(len(d.CorrectIndices))))
		correct := make(map[int]bool, len(d.CorrectIndices))
		for _, i := range d.CorrectIndices {
			correct[i] = true
		}
		for i, opt := range d.Options {
			xq.Answers = append(xq.Answers, choiceAnswer(opt, correct[i], share, q.Explanation))
		}

	case *quiz.TrueFalseData:
		xq.Type = "truefalse"
		xq.Answers = []xmlAnswer{
			boolAnswer("true", d.CorrectAnswer, q.Explanation),
			boolAnswer("false", !d.CorrectAnswer, q.Explanation),
		}

	case *quiz.NumericData:
		xq.Type = "numerical"
		a := xmlAnswer{
			Fraction:  "100",
			Text:      text(strconv.FormatFloat(d.CorrectAnswer, 'f', -1, 64)),
			Tolerance: "0.01",
		}
		if q.Explanation != "" {
			a.Feedback = rich(q.Explanation)
		}
		xq.Answers = []xmlAnswer{a}
		if d.Unit != "" {
			xq.Units = &xmlUnits{Units: []xmlUnit{{Multiplier: "1", Name: d.Unit}}}
		}

	case *quiz.MatchingData:
		xq.Type = "matching"
		xq.ShuffleAnswers = "true"
		for _, p := range d.Pairs {
			sq := xmlSubquestion{Format: "html", Text: text(p.Left)}
			sq.Answer.Text = text(p.Right)
			xq.Subquestions = append(xq.Subquestions, sq)
		}

	case *quiz.ClozeData:
		xq.Type = "cloze"
		xq.QuestionText = rich(renderCloze(d))

	case *quiz.EssayData:
		xq.Type = "essay"
		xq.ResponseFormat = d.ResponseFormat
		xq.ResponseRequired = boolFlag(d.ResponseRequired)
		xq.ResponseFieldLines = strconv.Itoa(d.ResponseFieldLines)
		xq.MinWordLimit = strconv.Itoa(d.MinWordLimit)
		xq.MaxWordLimit = strconv.Itoa(d.MaxWordLimit)
		xq.Attachments = strconv.Itoa(d.Attachments)
		xq.MaxBytes = strconv.Itoa(d.MaxBytes)

	default:
		return xmlQuestion{}, fmt.Errorf("question type %q has no payload", q.Type)
	}
	return xq, nil
}

// choiceAnswer emits per-answer feedback only on the correct branch.
func choiceAnswer(option string, correct bool, share int, feedback string) xmlAnswer {
	a := xmlAnswer{Fraction: "0", Format: "html", Text: text(option)}
	if correct {
		a.Fraction = strconv.Itoa(share)
		if feedback != "" {
			a.Feedback = rich(feedback)
		}
	}
	return a
}

func boolAnswer(label string, correct bool, feedback string) xmlAnswer {
	a := xmlAnswer{Fraction: "0", Text: text(label)}
	if correct {
		a.Fraction = "100"
		if feedback != "" {
			a.Feedback = rich(feedback)
		}
	}
	return a
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func questionName(text string) string {
	const maxLen = 60
	if text == "" {
		return "Question"
	}
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return text
}

// questionHTML re-embeds the image reference so a re-import recovers it.
func questionHTML(q quiz.Question) string {
	if q.Image == "" {
		return q.Text
	}
	return q.Text + `<p><img src="` + q.Image + `"/></p>`
}
