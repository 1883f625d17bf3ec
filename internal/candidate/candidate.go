package candidate

import (
	"path/filepath"
	"strings"
)

// NoEmail is stored when no address could be found in a résumé.
const NoEmail = "no-email@example.com"

// Document is a single uploaded résumé.
type Document struct {
	Filename string
	Data     []byte
}

// Name returns the candidate name derived from the document filename.
func (d Document) Name() string {
	return NameFromFilename(d.Filename)
}

// NameFromFilename strips the directory and the final extension.
// The remaining stem is taken as the candidate's name as is.
func NameFromFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Record is the outcome of scoring one document.
//
// Only Name, Email and Score are persisted. The remaining fields are kept for
// audit and display: Score already contains Adjustment, which is synthetic
// tie-break noise and carries no information about the candidate.
type Record struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Score float64 `json:"score"`

	Index       int     `json:"index"`
	BaseScore   float64 `json:"base_score"`
	Adjustment  float64 `json:"adjustment"`
	ScoreSource string  `json:"score_source"`
	Verdict     string  `json:"verdict,omitempty"`
	Err         string  `json:"error,omitempty"`
}

// Degraded reports whether the score was not produced by a parsed oracle verdict.
func (r *Record) Degraded() bool {
	return r.Err != ""
}
