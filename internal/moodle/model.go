// Package moodle reads and writes Moodle XML quiz documents, mapping them
// onto the canonical question model.
package moodle

import (
	"encoding/xml"
	"strings"
)

type document struct {
	XMLName   xml.Name      `xml:"quiz"`
	Questions []xmlQuestion `xml:"question"`
}

type xmlQuestion struct {
	Type string `xml:"type,attr"`

	Name            *richText `xml:"name,omitempty"`
	QuestionText    *richText `xml:"questiontext,omitempty"`
	GeneralFeedback *richText `xml:"generalfeedback,omitempty"`
	Category        *richText `xml:"category,omitempty"`
	DefaultGrade    string    `xml:"defaultgrade,omitempty"`

	Single          string `xml:"single,omitempty"`
	ShuffleAnswers  string `xml:"shuffleanswers,omitempty"`
	AnswerNumbering string `xml:"answernumbering,omitempty"`

	Answers      []xmlAnswer      `xml:"answer,omitempty"`
	Subquestions []xmlSubquestion `xml:"subquestion,omitempty"`
	Units        *xmlUnits        `xml:"units,omitempty"`

	ResponseFormat     string `xml:"responseformat,omitempty"`
	ResponseRequired   string `xml:"responserequired,omitempty"`
	ResponseFieldLines string `xml:"responsefieldlines,omitempty"`
	MinWordLimit       string `xml:"minwordlimit,omitempty"`
	MaxWordLimit       string `xml:"maxwordlimit,omitempty"`
	Attachments        string `xml:"attachments,omitempty"`
	MaxBytes           string `xml:"maxbytes,omitempty"`
}

type richText struct {
	Format string   `xml:"format,attr,omitempty"`
	Text   textNode `xml:"text"`
}

type xmlAnswer struct {
	Fraction  string    `xml:"fraction,attr"`
	Format    string    `xml:"format,attr,omitempty"`
	Text      textNode  `xml:"text"`
	Feedback  *richText `xml:"feedback,omitempty"`
	Tolerance string    `xml:"tolerance,omitempty"`
}

type xmlSubquestion struct {
	Format string   `xml:"format,attr,omitempty"`
	Text   textNode `xml:"text"`
	Answer struct {
		Text textNode `xml:"text"`
	} `xml:"answer"`
}

type xmlUnits struct {
	Units []xmlUnit `xml:"unit"`
}

type xmlUnit struct {
	Multiplier string `xml:"multiplier"`
	Name       string `xml:"unit_name"`
}

// textNode is Moodle's <text> wrapper. On export it switches to CDATA only
// when the payload carries markup-significant characters.
type textNode struct {
	Value string
}

func (t textNode) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if needsCDATA(t.Value) {
		return e.EncodeElement(struct {
			S string `xml:",cdata"`
		}{t.Value}, start)
	}
	return e.EncodeElement(t.Value, start)
}

func (t *textNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	t.Value = s
	return nil
}

func needsCDATA(s string) bool {
	return strings.ContainsAny(s, "<>&") || strings.Contains(s, "]]")
}

func text(s string) textNode { return textNode{Value: s} }

func rich(s string) *richText {
	return &richText{Format: "html", Text: text(s)}
}
