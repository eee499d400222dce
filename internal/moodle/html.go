package moodle

import (
	"regexp"
	"strings"
)

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	imgSrcRe = regexp.MustCompile(`<img[^>]*\bsrc\s*=\s*["']([^"']+)["']`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// entity replacements applied after tag stripping; &amp; goes last so it
// cannot re-introduce entities.
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// stripHTML reduces an HTML fragment to plain display text: tags removed,
// the common entities unescaped, whitespace collapsed.
func stripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = strings.ReplaceAll(s, "&amp;", "&")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// firstImageSrc extracts the first <img src> reference, if any.
func firstImageSrc(s string) string {
	m := imgSrcRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
