// Package sanitizer strips markup from user supplied text.
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every tag and returns unescaped plain text.
func Text(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
