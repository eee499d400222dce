package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultsPointsPerType(t *testing.T) {
	cases := []struct {
		q    Question
		want int
	}{
		{Question{Type: SingleChoice, Data: &SingleChoiceData{Options: []string{"a", "b"}, CorrectIndex: 0}}, 1},
		{Question{Type: MultipleChoice, Data: &MultipleChoiceData{Options: []string{"a", "b"}, CorrectIndices: []int{1}}}, 2},
		{Question{Type: TrueFalse, Data: &TrueFalseData{CorrectAnswer: true}}, 1},
		{Question{Type: Numeric, Data: &NumericData{CorrectAnswer: 3.5}}, 2},
		{Question{Type: Matching, Data: &MatchingData{Pairs: []Pair{{"a", "1"}, {"b", "2"}}}}, 3},
		{Question{Type: Cloze, Data: &ClozeData{Text: "{0}", Blanks: []Blank{{Kind: BlankText, CorrectAnswer: "x"}}}}, 2},
		{Question{Type: Essay, Data: &EssayData{}}, 5},
	}
	for _, c := range cases {
		got, err := Validate(c.q)
		require.NoError(t, err, "type %s", c.q.Type)
		assert.Equal(t, c.want, got.Points, "type %s", c.q.Type)
	}
}

func TestValidate_KeepsExplicitPoints(t *testing.T) {
	q, err := Validate(Question{Type: Essay, Points: 10, Data: &EssayData{}})
	require.NoError(t, err)
	assert.Equal(t, 10, q.Points)
}

func TestValidate_OptionBounds(t *testing.T) {
	_, err := Validate(Question{Type: SingleChoice, Data: &SingleChoiceData{Options: []string{"only"}}})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "options", verr.Field)

	_, err = Validate(Question{Type: SingleChoice, Data: &SingleChoiceData{
		Options: []string{"a", "b", "c", "d", "e", "f", "g"},
	}})
	assert.Error(t, err)

	_, err = Validate(Question{Type: SingleChoice, Data: &SingleChoiceData{Options: []string{"a", "   "}}})
	assert.Error(t, err, "blank option must fail after trimming")
}

func TestValidate_TrimsOptions(t *testing.T) {
	q, err := Validate(Question{Type: SingleChoice, Data: &SingleChoiceData{
		Options:      []string{" Paris ", "London"},
		CorrectIndex: 0,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "London"}, q.Data.(*SingleChoiceData).Options)
}

func TestValidate_CorrectIndexRange(t *testing.T) {
	_, err := Validate(Question{Type: SingleChoice, Data: &SingleChoiceData{
		Options:      []string{"a", "b"},
		CorrectIndex: 2,
	}})
	require.Error(t, err)

	_, err = Validate(Question{Type: MultipleChoice, Data: &MultipleChoiceData{
		Options:        []string{"a", "b"},
		CorrectIndices: []int{0, 5},
	}})
	require.Error(t, err)

	_, err = Validate(Question{Type: MultipleChoice, Data: &MultipleChoiceData{
		Options: []string{"a", "b"},
	}})
	assert.Error(t, err, "empty correct set must fail")
}

func TestValidate_NumericNeedsFiniteAnswer(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"type":"numeric","text":"t","data":{"correct_answer":"abc"}}`), &q)
	require.NoError(t, err)
	_, err = Validate(q)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"type":"numeric","text":"t","data":{"correct_answer":"42.5"}}`), &q)
	require.NoError(t, err)
	valid, err := Validate(q)
	require.NoError(t, err)
	assert.Equal(t, 42.5, valid.Data.(*NumericData).CorrectAnswer)
	assert.Equal(t, "", valid.Data.(*NumericData).Unit, "missing unit becomes empty, not absent")
}

func TestValidate_MatchingIdentityPairs(t *testing.T) {
	q, err := Validate(Question{Type: Matching, Data: &MatchingData{
		Pairs: []Pair{{"a", "1"}, {"b", "2"}, {"c", "3"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, q.Data.(*MatchingData).CorrectPairs)

	_, err = Validate(Question{Type: Matching, Data: &MatchingData{Pairs: []Pair{{"a", "1"}}}})
	assert.Error(t, err, "one pair is not enough")

	_, err = Validate(Question{Type: Matching, Data: &MatchingData{Pairs: []Pair{{"a", ""}, {"b", "2"}}}})
	assert.Error(t, err, "empty pair side must fail")
}

func TestValidate_ClozeSyncsText(t *testing.T) {
	q, err := Validate(Question{Type: Cloze, Text: "stale", Data: &ClozeData{
		Text: "Pick {0} and {1}",
		Blanks: []Blank{
			{Kind: BlankDropdown, Options: []string{"x", "y"}, CorrectIndex: 1},
			{Kind: BlankText, CorrectAnswer: "z"},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Pick {0} and {1}", q.Text)

	_, err = Validate(Question{Type: Cloze, Data: &ClozeData{Text: "no blanks"}})
	assert.Error(t, err)

	_, err = Validate(Question{Type: Cloze, Data: &ClozeData{
		Text:   "{0}",
		Blanks: []Blank{{Kind: BlankDropdown, Options: []string{"only"}}},
	}})
	assert.Error(t, err, "dropdown needs at least 2 options")
}

func TestValidate_EssayDefaults(t *testing.T) {
	q, err := Validate(Question{Type: Essay, Data: &EssayData{}})
	require.NoError(t, err)
	d := q.Data.(*EssayData)
	assert.Equal(t, "editor", d.ResponseFormat)
	assert.Equal(t, 15, d.ResponseFieldLines)
}

func TestValidate_UnknownType(t *testing.T) {
	_, err := Validate(Question{Type: "ranking"})
	assert.Error(t, err)
}

func TestQuestionJSONRoundTrip(t *testing.T) {
	orig := Question{
		ID:     "q1",
		Type:   MultipleChoice,
		Text:   "pick two",
		Points: 2,
		Data:   &MultipleChoiceData{Options: []string{"a", "b", "c"}, CorrectIndices: []int{0, 2}},
	}
	buf, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Question
	require.NoError(t, json.Unmarshal(buf, &back))
	assert.Equal(t, orig, back)
}
