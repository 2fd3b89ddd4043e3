package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkdownPlain(t *testing.T) {
	out, err := Markdown("# Verdict: PASS\n\n**Score**: 7.2/10\n", "notty", 60)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Verdict: PASS") || !strings.Contains(out, "7.2/10") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(path, []byte("## Market\n\nTAM is large."), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := File(path, "notty", 0)
	if err != nil {
		t.Fatalf("render file: %v", err)
	}
	if !strings.Contains(out, "TAM is large.") {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.md"), "notty", 0); err == nil {
		t.Error("expected error for missing file")
	}
}
