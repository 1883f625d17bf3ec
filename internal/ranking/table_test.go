package ranking

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/cv-ranker/internal/batch"
	"github.com/spigell/cv-ranker/internal/candidate"
)

func sampleTable() *Table {
	return FromBatch(&batch.Result{
		ID:     "batch-1",
		Seed:   42,
		Spread: 5,
		Records: []*candidate.Record{
			{Index: 0, Name: "bob", Email: candidate.NoEmail, Score: 1.5, Adjustment: 1.5, ScoreSource: "no-verdict", Err: "oracle unavailable: quota"},
			{Index: 1, Name: "alice", Email: "alice@example.com", Score: 91.25, BaseScore: 90, Adjustment: 1.25, ScoreSource: "overall", Verdict: "Overall Suitability Score: 90"},
			{Index: 2, Name: "carol", Email: "carol@example.com", Score: 91.25, BaseScore: 92, Adjustment: -0.75, ScoreSource: "for-the-job"},
		},
	})
}

func TestFromBatchSorts(t *testing.T) {
	table := sampleTable()
	if table.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", table.Len())
	}

	var names []string
	for _, rec := range table.Records {
		names = append(names, rec.Name)
	}
	if got := strings.Join(names, ","); got != "alice,carol,bob" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().Render(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Suitability Score",
		"alice@example.com",
		"91.25",
		"1.50 *",
		"[-5, +5) (seed 42)",
		"* 1 candidate(s) could not be scored",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderVerdicts(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderVerdicts(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Overall Suitability Score: 90") || !strings.Contains(out, "(no verdict: oracle unavailable: quota)") {
		t.Fatalf("unexpected verdicts output:\n%s", out)
	}
}

func TestReportBySource(t *testing.T) {
	report := sampleTable().ReportBySource()
	if len(report["overall"]) != 1 || report["overall"][0] != "alice" {
		t.Fatalf("unexpected report %v", report)
	}
	if len(report["no-verdict"]) != 1 {
		t.Fatalf("unexpected report %v", report)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := sampleTable().DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(name)

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded Table
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if decoded.BatchID != "batch-1" || decoded.Seed != 42 || len(decoded.Records) != 3 {
		t.Fatalf("unexpected dump %+v", decoded)
	}
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.xlsx")
	if err := sampleTable().ExportXLSX(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][3] != "Suitability Score" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "alice" || rows[3][1] != "bob" {
		t.Fatalf("unexpected order %v", rows)
	}
}
