package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectDocuments(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bob.pdf":    "bob",
		"alice.PDF":  "alice",
		"notes.txt":  "skip",
		"single.pdf": "single",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	docs, err := collectDocuments([]string{dir, filepath.Join(dir, "notes.txt")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, doc := range docs {
		names = append(names, doc.Name())
	}
	expect := []string{"alice", "bob", "single", "notes"}
	if len(names) != len(expect) {
		t.Fatalf("expected %v, got %v", expect, names)
	}
	for i := range expect {
		if names[i] != expect[i] {
			t.Fatalf("expected %v, got %v", expect, names)
		}
	}
	if string(docs[0].Data) != "alice" {
		t.Fatalf("unexpected data %q", docs[0].Data)
	}

	if _, err := collectDocuments([]string{filepath.Join(dir, "missing.pdf")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveJobDescription(t *testing.T) {
	dir := t.TempDir()
	jd := filepath.Join(dir, "jd.txt")
	if err := os.WriteFile(jd, []byte("  Senior Go engineer\n"), 0o600); err != nil {
		t.Fatalf("write jd: %v", err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write jd: %v", err)
	}

	if got, err := resolveJobDescription(" inline ", jd, ""); err != nil || got != "inline" {
		t.Fatalf("expected inline text, got %q (%v)", got, err)
	}
	if got, err := resolveJobDescription("", jd, "ignored.txt"); err != nil || got != "Senior Go engineer" {
		t.Fatalf("expected file text, got %q (%v)", got, err)
	}
	if got, err := resolveJobDescription("", "", jd); err != nil || got != "Senior Go engineer" {
		t.Fatalf("expected configured file text, got %q (%v)", got, err)
	}
	if _, err := resolveJobDescription("", "", ""); err == nil {
		t.Fatal("expected error without job description")
	}
	if _, err := resolveJobDescription("", empty, ""); err == nil {
		t.Fatal("expected error for empty job description file")
	}
}
