package genai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

func TestValidateGenerated_StrictJSON(t *testing.T) {
	raw := `{"title":"Planets","description":"A short check.","questions":[
	  {"type":"single_choice","text":"Largest planet?","data":{"options":["Mars","Jupiter"],"correct_index":1}}
	]}`
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, "Planets", gen.Title)
	require.Len(t, gen.Questions, 1)
	assert.Empty(t, gen.Dropped)
	assert.Equal(t, 1, gen.Questions[0].Points, "missing points filled from the type default")
}

func TestValidateGenerated_FencedWithProse(t *testing.T) {
	raw := "Sure, here is your quiz:\n```json\n" +
		`{"title":"T","questions":[{"type":"true_false","text":"The sky is blue.","data":{"correct_answer":true}}]}` +
		"\n```\nLet me know if you need more."
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)
	require.Len(t, gen.Questions, 1)
	assert.Equal(t, quiz.TrueFalse, gen.Questions[0].Type)
}

func TestValidateGenerated_PartialSurvival(t *testing.T) {
	raw := `{"questions":[
	  {"type":"single_choice","text":"q1","data":{"options":["a","b"],"correct_index":0}},
	  {"type":"single_choice","text":"q2","data":{"options":["only one"],"correct_index":0}},
	  {"type":"true_false","text":"q3","data":{"correct_answer":false}},
	  {"type":"ranking","text":"q4","data":{}},
	  {"type":"numeric","text":"q5","data":{"correct_answer":"12.5"}}
	]}`
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)

	assert.Len(t, gen.Questions, 3)
	assert.Len(t, gen.Dropped, 2)
	assert.Contains(t, gen.Dropped[0], "question 1")
	assert.Contains(t, gen.Dropped[1], "question 3")
}

func TestValidateGenerated_NumericRepairs(t *testing.T) {
	raw := `{"questions":[{"type":"numeric","text":"Distance?","data":{"correct_answer":"149.6"}}]}`
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)

	require.Len(t, gen.Questions, 1)
	q := gen.Questions[0]
	assert.Equal(t, 2, q.Points)
	d := q.Data.(*quiz.NumericData)
	assert.Equal(t, 149.6, d.CorrectAnswer, "string answers are coerced")
	assert.Equal(t, "", d.Unit)
}

func TestValidateGenerated_MatchingIdentityRepair(t *testing.T) {
	raw := `{"questions":[{"type":"matching","text":"Match.","data":{"pairs":[
	  {"left":"Io","right":"Jupiter"},{"left":"Titan","right":"Saturn"}
	]}}]}`
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)

	require.Len(t, gen.Questions, 1)
	d := gen.Questions[0].Data.(*quiz.MatchingData)
	assert.Equal(t, []int{0, 1}, d.CorrectPairs)
}

func TestValidateGenerated_EssayRequiredDefault(t *testing.T) {
	raw := `{"questions":[
	  {"type":"essay","text":"Discuss.","data":{}},
	  {"type":"essay","text":"Optional.","data":{"response_required":false}}
	]}`
	gen, err := ValidateGenerated(raw, nil)
	require.NoError(t, err)

	require.Len(t, gen.Questions, 2)
	assert.True(t, gen.Questions[0].Data.(*quiz.EssayData).ResponseRequired, "omitted field defaults to required")
	assert.False(t, gen.Questions[1].Data.(*quiz.EssayData).ResponseRequired, "explicit false is kept")
}

func TestValidateGenerated_AllowedTypesFilter(t *testing.T) {
	raw := `{"questions":[
	  {"type":"true_false","text":"q1","data":{"correct_answer":true}},
	  {"type":"essay","text":"q2","data":{}}
	]}`
	gen, err := ValidateGenerated(raw, []quiz.QuestionType{quiz.TrueFalse})
	require.NoError(t, err)

	require.Len(t, gen.Questions, 1)
	assert.Equal(t, quiz.TrueFalse, gen.Questions[0].Type)
	require.Len(t, gen.Dropped, 1)
	assert.Contains(t, gen.Dropped[0], "not allowed")
}

func TestValidateGenerated_HardFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no JSON at all", "I could not generate a quiz, sorry."},
		{"broken JSON", "```json\n{\"questions\": [}\n```"},
		{"missing questions array", `{"title":"T"}`},
		{"nothing survives", `{"questions":[{"type":"ranking","text":"q","data":{}}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ValidateGenerated(c.raw, nil)
			require.Error(t, err)
			var hf *HardFailure
			assert.True(t, errors.As(err, &hf))
		})
	}
}

func TestValidateGenerated_EmptyQuestionsArray(t *testing.T) {
	_, err := ValidateGenerated(`{"questions":[]}`, nil)
	var hf *HardFailure
	require.True(t, errors.As(err, &hf))
	assert.Contains(t, hf.Reason, "survived")
}
