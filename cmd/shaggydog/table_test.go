package main

import (
	"strings"
	"testing"
)

func TestRenderTableFillsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Breed", "Created"},
		[][]string{
			{"7", "Golden Retriever", "2026-08-28 10:00"},
			{"12"},
		},
		1,
	)
	for _, want := range []string{"ID", "Breed", "Golden Retriever", "12"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("short rows should render empty cells, got:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
