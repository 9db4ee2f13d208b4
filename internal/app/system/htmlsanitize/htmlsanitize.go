// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all markup. Policies are safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// PlainText strips any HTML from s and trims surrounding whitespace. Used on
// free-text fields (task notes, citizen duty) that are returned as JSON, so
// the entities bluemonday escapes are decoded back to the typed characters.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// PlainTextPtr is PlainText for optional fields; nil stays nil.
func PlainTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := PlainText(*s)
	return &v
}
