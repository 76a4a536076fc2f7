package llm

import (
	"strings"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world.md"},
		{"test: file/name", "test-file-name.md"},
		{"my---daily---notes", "my-daily-notes.md"},
		{"trailing?", "trailing.md"},
		{"already.md", "already.md"},
		{"Meeting With TEAM", "meeting-with-team.md"},
		{`a\b*c"d'e<f>g|h`, "a-b-c-d-e-f-g-h.md"},
		{"  padded  ", "-padded.md"},
		{"notes.md.md", "notes.md"},
		{"NOTES.MD", "notes.md"},
		{"", ".md"},
		{"---", ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeTitle(tt.in); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func FuzzSanitizeTitle(f *testing.F) {
	for _, seed := range []string{
		"Hello World",
		"test: file/name",
		"my---daily---notes",
		"trailing?",
		"already.md",
		"x.md.md.md",
		"a-\t",
		"\t-a- ",
		"Ünïcödé Títle",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in string) {
		once := SanitizeTitle(in)
		twice := SanitizeTitle(once)
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
		if !strings.HasSuffix(once, Extension) {
			t.Fatalf("%q does not end with %s", once, Extension)
		}
		if strings.HasSuffix(once, Extension+Extension) {
			t.Fatalf("%q has a doubled extension", once)
		}
		if strings.ContainsAny(once, ` /\:?*"'<>|`) {
			t.Fatalf("%q contains unsafe characters", once)
		}
		if strings.Contains(once, "--") {
			t.Fatalf("%q contains consecutive hyphens", once)
		}
	})
}
