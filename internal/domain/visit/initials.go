package visit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Initials is the upper-cased first letter of each word of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// SignDailyNote trims content and appends " -INITIALS" unless it already
// ends with the author's initials. Empty content is left empty.
func SignDailyNote(content, authorName string) string {
	content = strings.TrimSpace(content)
	initials := Initials(authorName)
	if content == "" || initials == "" || strings.HasSuffix(content, initials) {
		return content
	}
	return content + " -" + initials
}
