package quiz

import "sort"

// Redact strips everything a learner must not see before answering. The
// shape of each payload survives so the client can render the question.
func Redact(q Question) Question {
	switch d := q.Data.(type) {
	case *SingleChoiceData:
		q.Data = &SingleChoiceData{Options: d.Options, CorrectIndex: -1}
	case *MultipleChoiceData:
		q.Data = &MultipleChoiceData{Options: d.Options}
	case *TrueFalseData:
		q.Data = &TrueFalseData{}
	case *NumericData:
		q.Data = &NumericData{Unit: d.Unit}
	case *MatchingData:
		// Right-column values are re-sorted so their order reveals nothing
		// about the correct mapping.
		rights := make([]string, len(d.Pairs))
		for i, p := range d.Pairs {
			rights[i] = p.Right
		}
		sort.Strings(rights)
		pairs := make([]Pair, len(d.Pairs))
		for i, p := range d.Pairs {
			pairs[i] = Pair{Left: p.Left, Right: rights[i]}
		}
		q.Data = &MatchingData{Pairs: pairs}
	case *ClozeData:
		blanks := make([]Blank, len(d.Blanks))
		for i, b := range d.Blanks {
			blanks[i] = Blank{Kind: b.Kind, Options: b.Options, CorrectIndex: -1, CaseSensitive: b.CaseSensitive}
		}
		q.Data = &ClozeData{Text: d.Text, Blanks: blanks}
	case *EssayData:
		// Nothing to hide.
	}
	q.Explanation = ""
	return q
}

// RedactQuiz redacts every question of a quiz, leaving the input untouched.
func RedactQuiz(q Quiz) Quiz {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = Redact(question)
	}
	q.Questions = questions
	return q
}
