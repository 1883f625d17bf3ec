// Package ranking presents the outcome of a batch.
package ranking

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spigell/cv-ranker/internal/batch"
	"github.com/spigell/cv-ranker/internal/candidate"
)

// Table is a ranked list of candidates plus the tie-break parameters that were
// applied to it.
type Table struct {
	BatchID string              `json:"batch_id"`
	Seed    uint64              `json:"tie_break_seed"`
	Spread  float64             `json:"tie_break_spread"`
	Records []*candidate.Record `json:"candidates"`
}

func FromBatch(result *batch.Result) *Table {
	if result == nil {
		return &Table{}
	}
	t := &Table{
		BatchID: result.ID,
		Seed:    result.Seed,
		Spread:  result.Spread,
		Records: append([]*candidate.Record(nil), result.Records...),
	}
	t.Sort()
	return t
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Sort orders candidates by score, highest first. Equal scores keep submission order.
func (t *Table) Sort() {
	sort.SliceStable(t.Records, func(a, b int) bool {
		if t.Records[a].Score != t.Records[b].Score {
			return t.Records[a].Score > t.Records[b].Score
		}
		return t.Records[a].Index < t.Records[b].Index
	})
}

// Render writes the result table followed by the tie-break disclosure.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tName\tEmail\tSuitability Score\t")

	degraded := 0
	for i, rec := range t.Records {
		mark := ""
		if rec.Degraded() {
			mark = " *"
			degraded++
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f%s\t\n", i+1, rec.Name, rec.Email, rec.Score, mark)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	var footer strings.Builder
	fmt.Fprintf(&footer, "\nScores include a random tie-break adjustment in [-%g, +%g) (seed %d).\n", t.Spread, t.Spread, t.Seed)
	if degraded > 0 {
		fmt.Fprintf(&footer, "* %d candidate(s) could not be scored; their score is the adjustment alone.\n", degraded)
	}
	_, err := io.WriteString(w, footer.String())
	return err
}

// RenderVerdicts writes the raw oracle reply for every candidate.
func (t *Table) RenderVerdicts(w io.Writer) error {
	for i, rec := range t.Records {
		verdict := strings.TrimSpace(rec.Verdict)
		if verdict == "" {
			verdict = "(no verdict: " + rec.Err + ")"
		}
		if _, err := fmt.Fprintf(w, "== %d. %s (%.2f)\n%s\n\n", i+1, rec.Name, rec.Score, verdict); err != nil {
			return err
		}
	}
	return nil
}

// ReportBySource groups candidate names by how their score was obtained.
func (t *Table) ReportBySource() map[string][]string {
	report := make(map[string][]string)
	for _, rec := range t.Records {
		report[rec.ScoreSource] = append(report[rec.ScoreSource], rec.Name)
	}
	return report
}

func (t *Table) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return "", err
	}
	return file.Name(), nil
}
