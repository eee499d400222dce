package moodle

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

// Embedded-answer tokens: {<weight>:<KIND>:<body>}. The leading number is a
// Moodle sub-question weight and is not carried into the canonical form.
var clozeTokenRe = regexp.MustCompile(`\{(\d+):(MULTICHOICE|SHORTANSWER|NUMERICAL):([^}]*)\}`)

// parseCloze scans raw question text for embedded-answer tokens. Each token
// is replaced by a zero-based {i} placeholder and becomes one blank, in
// document order. The scan is pure: no matcher state survives the call.
func parseCloze(raw string) (string, []quiz.Blank) {
	var blanks []quiz.Blank
	text := clozeTokenRe.ReplaceAllStringFunc(raw, func(token string) string {
		m := clozeTokenRe.FindStringSubmatch(token)
		kind, body := m[2], m[3]
		switch kind {
		case "MULTICHOICE":
			blanks = append(blanks, dropdownBlank(body))
		default: // SHORTANSWER, NUMERICAL
			answer := strings.TrimPrefix(body, "=")
			if kind == "NUMERICAL" {
				// The tolerance suffix after ':' has no canonical representation.
				if i := strings.Index(answer, ":"); i >= 0 {
					answer = answer[:i]
				}
			}
			blanks = append(blanks, quiz.Blank{
				Kind:          quiz.BlankText,
				CorrectAnswer: answer,
				CaseSensitive: false,
			})
		}
		return fmt.Sprintf("{%d}", len(blanks)-1)
	})
	return text, blanks
}

func dropdownBlank(body string) quiz.Blank {
	parts := strings.Split(body, "~")
	options := make([]string, 0, len(parts))
	correct := 0
	for _, part := range parts {
		marked := strings.HasPrefix(part, "=")
		part = strings.TrimPrefix(part, "=")
		// Per-option feedback suffix is discarded; correctness is carried
		// only by the leading '='.
		if i := strings.Index(part, "#"); i >= 0 {
			part = part[:i]
		}
		options = append(options, part)
		if marked {
			correct = len(options) - 1
		}
	}
	return quiz.Blank{Kind: quiz.BlankDropdown, Options: options, CorrectIndex: correct}
}

// renderCloze substitutes embedded-answer tokens back into the {i}
// placeholder positions. Token numbering is 1-indexed and cosmetic; the
// importer does not read it back.
func renderCloze(d *quiz.ClozeData) string {
	out := d.Text
	for i, b := range d.Blanks {
		var token string
		switch b.Kind {
		case quiz.BlankDropdown:
			parts := make([]string, len(b.Options))
			for j, opt := range b.Options {
				if j == b.CorrectIndex {
					parts[j] = "=" + opt
				} else {
					parts[j] = opt
				}
			}
			token = fmt.Sprintf("{%d:MULTICHOICE:%s}", i+1, strings.Join(parts, "~"))
		default:
			token = fmt.Sprintf("{%d:SHORTANSWER:=%s}", i+1, b.CorrectAnswer)
		}
		out = strings.Replace(out, fmt.Sprintf("{%d}", i), token, 1)
	}
	return out
}
