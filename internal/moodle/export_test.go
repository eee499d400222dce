package moodle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

func validated(t *testing.T, q quiz.Question) quiz.Question {
	t.Helper()
	valid, err := quiz.Validate(q)
	require.NoError(t, err)
	return valid
}

func TestExport_RejectsEmptyQuiz(t *testing.T) {
	_, err := Export(&quiz.Quiz{Title: "empty"})
	assert.ErrorIs(t, err, ErrEmptyQuiz)
}

func TestExport_Category(t *testing.T) {
	q := &quiz.Quiz{
		Topic: "Astronomy",
		Questions: []quiz.Question{validated(t, quiz.Question{
			Type: quiz.TrueFalse, Text: "The Moon orbits Earth.",
			Data: &quiz.TrueFalseData{CorrectAnswer: true},
		})},
	}
	out, err := Export(q)
	require.NoError(t, err)
	assert.Contains(t, string(out), `type="category"`)
	assert.Contains(t, string(out), "$course$/Astronomy")
}

func TestExport_CDATAOnlyWhenNeeded(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		validated(t, quiz.Question{
			Type: quiz.SingleChoice, Text: "Plain question",
			Data: &quiz.SingleChoiceData{Options: []string{"a < b", "a > b"}, CorrectIndex: 0},
		}),
	}}
	out, err := Export(q)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "<text>Plain question</text>", "markup-free text stays plain")
	assert.Contains(t, s, "<![CDATA[a < b]]>", "markup-significant text goes through CDATA")
}

func TestExport_MultipleChoiceFractions(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		validated(t, quiz.Question{
			Type: quiz.MultipleChoice, Text: "Pick the gas giants",
			Data: &quiz.MultipleChoiceData{
				Options:        []string{"Jupiter", "Mars", "Saturn"},
				CorrectIndices: []int{0, 2},
			},
		}),
	}}
	out, err := Export(q)
	require.NoError(t, err)
	s := string(out)
	assert.Equal(t, 2, strings.Count(s, `fraction="50"`), "credit split across the correct set")
	assert.Contains(t, s, `<single>false</single>`)
}

func TestExport_NumericFixedTolerance(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		validated(t, quiz.Question{
			Type: quiz.Numeric, Text: "Distance?",
			Data: &quiz.NumericData{CorrectAnswer: 149.6, Unit: "Gm"},
		}),
	}}
	out, err := Export(q)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<tolerance>0.01</tolerance>")
	assert.Contains(t, string(out), "<unit_name>Gm</unit_name>")
}

func TestExport_FeedbackOnlyOnCorrectBranch(t *testing.T) {
	q := &quiz.Quiz{Questions: []quiz.Question{
		validated(t, quiz.Question{
			Type: quiz.SingleChoice, Text: "Largest planet?", Explanation: "It is Jupiter.",
			Data: &quiz.SingleChoiceData{Options: []string{"Mars", "Jupiter"}, CorrectIndex: 1},
		}),
	}}
	out, err := Export(q)
	require.NoError(t, err)
	s := string(out)
	assert.Equal(t, 1, strings.Count(s, "<feedback"), "only the correct answer carries feedback")
	assert.Contains(t, s, "<generalfeedback")
}

// Round-trip per the four stable types: text, options/pairs and correctness
// markers survive export followed by import. Cloze token numbering and
// multiple_choice fraction math are lossy by design and not asserted here.
func TestRoundTrip(t *testing.T) {
	orig := &quiz.Quiz{
		Topic: "Astronomy",
		Questions: []quiz.Question{
			validated(t, quiz.Question{
				Type: quiz.SingleChoice, Text: "Which is the largest planet?", Points: 2,
				Explanation: "Jupiter is the largest.",
				Data:        &quiz.SingleChoiceData{Options: []string{"Mars", "Jupiter", "Saturn"}, CorrectIndex: 1},
			}),
			validated(t, quiz.Question{
				Type: quiz.TrueFalse, Text: "The Moon orbits Earth.",
				Data: &quiz.TrueFalseData{CorrectAnswer: true},
			}),
			validated(t, quiz.Question{
				Type: quiz.Numeric, Text: "Distance to the Sun?",
				Data: &quiz.NumericData{CorrectAnswer: 149.6, Unit: "Gm"},
			}),
			validated(t, quiz.Question{
				Type: quiz.Matching, Text: "Match moons to planets.",
				Data: &quiz.MatchingData{Pairs: []quiz.Pair{
					{Left: "Io", Right: "Jupiter"},
					{Left: "Titan", Right: "Saturn"},
				}},
			}),
		},
	}

	out, err := Export(orig)
	require.NoError(t, err)

	back, report, err := Import(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)

	assert.Equal(t, orig.Topic, back.Topic)
	require.Len(t, back.Questions, len(orig.Questions))
	for i := range orig.Questions {
		assert.Equal(t, orig.Questions[i].Type, back.Questions[i].Type, "question %d", i)
		assert.Equal(t, orig.Questions[i].Text, back.Questions[i].Text, "question %d", i)
		assert.Equal(t, orig.Questions[i].Points, back.Questions[i].Points, "question %d", i)
	}

	assert.Equal(t, orig.Questions[0].Data, back.Questions[0].Data)
	assert.Equal(t, orig.Questions[1].Data, back.Questions[1].Data)

	nd := back.Questions[2].Data.(*quiz.NumericData)
	assert.Equal(t, 149.6, nd.CorrectAnswer)
	assert.Equal(t, "Gm", nd.Unit)

	assert.Equal(t, orig.Questions[3].Data, back.Questions[3].Data)
}

func TestRoundTrip_ImageSurvives(t *testing.T) {
	orig := &quiz.Quiz{Questions: []quiz.Question{
		validated(t, quiz.Question{
			Type: quiz.TrueFalse, Text: "The Moon orbits Earth.",
			Image: "https://example.org/moon.png",
			Data:  &quiz.TrueFalseData{CorrectAnswer: false},
		}),
	}}
	out, err := Export(orig)
	require.NoError(t, err)

	back, _, err := Import(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, back.Questions, 1)
	assert.Equal(t, "The Moon orbits Earth.", back.Questions[0].Text)
	assert.Equal(t, "https://example.org/moon.png", back.Questions[0].Image)
}
