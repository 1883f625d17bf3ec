package contact

import (
	"testing"

	"github.com/spigell/cv-ranker/internal/candidate"
)

func TestEmailOrDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "plain address",
			input:  "Alice Liddell\nalice@example.com\n+44 000",
			expect: "alice@example.com",
		},
		{
			name:   "first of many",
			input:  "contact: first.last+cv@mail.example.org or backup@example.net",
			expect: "first.last+cv@mail.example.org",
		},
		{
			name:   "upper case",
			input:  "EMAIL: BOB_SMITH@EXAMPLE.COM",
			expect: "BOB_SMITH@EXAMPLE.COM",
		},
		{
			name:   "surrounded by punctuation",
			input:  "(carol@example.io).",
			expect: "carol@example.io",
		},
		{
			name:   "short tld is rejected",
			input:  "dave@example.c",
			expect: candidate.NoEmail,
		},
		{
			name:   "no address",
			input:  "Senior engineer, ten years of Go",
			expect: candidate.NoEmail,
		},
		{
			name:   "empty",
			input:  "",
			expect: candidate.NoEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EmailOrDefault(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestFindReportsAbsence(t *testing.T) {
	if email, ok := Find("nothing here"); ok || email != "" {
		t.Fatalf("expected no match, got %q", email)
	}
}
