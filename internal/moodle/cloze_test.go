package moodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

func TestParseCloze_Multichoice(t *testing.T) {
	text, blanks := parseCloze("{1:MULTICHOICE:=Jupiter~Mars~Saturn}")

	assert.Equal(t, "{0}", text)
	require.Len(t, blanks, 1)
	assert.Equal(t, quiz.BlankDropdown, blanks[0].Kind)
	assert.Equal(t, []string{"Jupiter", "Mars", "Saturn"}, blanks[0].Options)
	assert.Equal(t, 0, blanks[0].CorrectIndex)
}

func TestParseCloze_SequentialPlaceholders(t *testing.T) {
	text, blanks := parseCloze("First {3:MULTICHOICE:a~=b} then {1:SHORTANSWER:=moon}")

	assert.Equal(t, "First {0} then {1}", text, "placeholders count matches, not token numbers")
	require.Len(t, blanks, 2)
	assert.Equal(t, 1, blanks[0].CorrectIndex)
	assert.Equal(t, quiz.BlankText, blanks[1].Kind)
	assert.Equal(t, "moon", blanks[1].CorrectAnswer)
	assert.False(t, blanks[1].CaseSensitive)
}

func TestParseCloze_FeedbackDiscarded(t *testing.T) {
	_, blanks := parseCloze("{1:MULTICHOICE:wrong#nope~=right#well done}")

	require.Len(t, blanks, 1)
	assert.Equal(t, []string{"wrong", "right"}, blanks[0].Options)
	assert.Equal(t, 1, blanks[0].CorrectIndex)
}

func TestParseCloze_LastMarkedOptionWins(t *testing.T) {
	_, blanks := parseCloze("{1:MULTICHOICE:=a~=b~c}")
	assert.Equal(t, 1, blanks[0].CorrectIndex)
}

func TestParseCloze_UnmarkedDefaultsToFirst(t *testing.T) {
	_, blanks := parseCloze("{1:MULTICHOICE:a~b~c}")
	assert.Equal(t, 0, blanks[0].CorrectIndex)
}

func TestParseCloze_NumericalToleranceDiscarded(t *testing.T) {
	_, blanks := parseCloze("The answer is {2:NUMERICAL:=42.5:0.5}")

	require.Len(t, blanks, 1)
	assert.Equal(t, quiz.BlankText, blanks[0].Kind)
	assert.Equal(t, "42.5", blanks[0].CorrectAnswer)
}

func TestParseCloze_NoTokens(t *testing.T) {
	text, blanks := parseCloze("no blanks here")
	assert.Equal(t, "no blanks here", text)
	assert.Empty(t, blanks)
}

func TestRenderCloze(t *testing.T) {
	d := &quiz.ClozeData{
		Text: "Pick {0} near {1}",
		Blanks: []quiz.Blank{
			{Kind: quiz.BlankDropdown, Options: []string{"Jupiter", "Mars"}, CorrectIndex: 0},
			{Kind: quiz.BlankText, CorrectAnswer: "Europa"},
		},
	}
	out := renderCloze(d)
	assert.Equal(t, "Pick {1:MULTICHOICE:=Jupiter~Mars} near {2:SHORTANSWER:=Europa}", out)

	// The rendered form scans back to the same blanks.
	text, blanks := parseCloze(out)
	assert.Equal(t, d.Text, text)
	assert.Equal(t, d.Blanks, blanks)
}
