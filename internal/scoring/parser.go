package scoring

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/spigell/cv-ranker/internal/ai"
)

var (
	ErrScoreUnparseable = errors.New("score unparseable")
	ErrNoVerdict        = errors.New("no verdict")
)

// Source tells which rule produced a score.
type Source string

const (
	SourceForTheJob   Source = "for-the-job"
	SourceOverall     Source = "overall"
	SourceUnparseable Source = "unparseable"
	SourceNoVerdict   Source = "no-verdict"
)

type pattern struct {
	source Source
	re     *regexp.Regexp
}

// Ordered by precedence. The oracle phrasing is not under our control, so
// anything else falls back to zero instead of failing the batch.
var patterns = []pattern{
	{source: SourceForTheJob, re: regexp.MustCompile(`Overall Suitability Score for the Job: (\d+)`)},
	{source: SourceOverall, re: regexp.MustCompile(`Overall Suitability Score: (\d+)`)},
}

// Result is a parsed suitability score.
type Result struct {
	Score  float64
	Source Source
}

// Err explains a zero score that was not assigned by the oracle.
func (r Result) Err() error {
	switch r.Source {
	case SourceUnparseable:
		return ErrScoreUnparseable
	case SourceNoVerdict:
		return ErrNoVerdict
	default:
		return nil
	}
}

// Parse extracts the suitability score from an oracle verdict.
func Parse(v ai.Verdict) Result {
	if !v.OK() {
		return Result{Source: SourceNoVerdict}
	}
	return ParseText(v.Text)
}

// ParseText applies the score patterns to raw oracle text.
func ParseText(text string) Result {
	for _, p := range patterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		score, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		return Result{Score: score, Source: p.source}
	}
	return Result{Source: SourceUnparseable}
}
