package schemas

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// SanitizeUGC keeps the safe subset of HTML visitors may post. The result is
// HTML, so text entities stay escaped.
func SanitizeUGC(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// SanitizePlain strips all markup and returns plain text; used for names,
// short labels and message bodies. Clients escape it when rendering.
func SanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
