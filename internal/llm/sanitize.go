package llm

import (
	"regexp"
	"strings"
)

// Extension is appended to every sanitized title.
const Extension = ".md"

var (
	unsafeTitleChars = strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		"?", "-",
		"*", "-",
		"\"", "-",
		"'", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	multiHyphenRegex = regexp.MustCompile(`-{2,}`)
)

// SanitizeTitle turns a model-suggested title into a filesystem-safe file
// name ending in Extension exactly once. It is idempotent.
func SanitizeTitle(title string) string {
	safe := unsafeTitleChars.Replace(title)
	safe = strings.ToLower(safe)
	safe = multiHyphenRegex.ReplaceAllString(safe, "-")
	safe = strings.TrimRight(safe, "-")
	safe = strings.TrimSpace(safe)

	for strings.HasSuffix(safe, Extension+Extension) {
		safe = strings.TrimSuffix(safe, Extension)
	}
	if !strings.HasSuffix(safe, Extension) {
		safe += Extension
	}
	return safe
}
