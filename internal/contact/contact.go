package contact

import (
	"regexp"

	"github.com/spigell/cv-ranker/internal/candidate"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

// Find returns the first email address found in text.
func Find(text string) (string, bool) {
	match := emailPattern.FindString(text)
	return match, match != ""
}

// EmailOrDefault returns the first email address in text or candidate.NoEmail.
func EmailOrDefault(text string) string {
	if email, ok := Find(text); ok {
		return email
	}
	return candidate.NoEmail
}
