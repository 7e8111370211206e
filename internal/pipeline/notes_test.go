package pipeline

// Notes:
// - The goroutine branch that loses the race to ctx.Done() is covered by the
//   pre-cancelled context test only; timing a mid-conversion cancel would be flaky.

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkNotes_RenderNotes - Markdown to HTML fragment
// ---------------------------------------------------------------------------

func TestGoldmarkNotes_RenderNotes(t *testing.T) {
	t.Parallel()

	r := NewGoldmarkNotes()

	tests := []struct {
		name        string
		input       string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "emphasis",
			input:       "Price valid for **7 days**",
			wantContain: []string{"<strong>7 days</strong>"},
		},
		{
			name:        "hard wraps",
			input:       "line one\nline two",
			wantContain: []string{"<br />"},
		},
		{
			name:        "gfm table",
			input:       "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContain: []string{"<table>", "<td>1</td>"},
		},
		{
			name:        "arabic text preserved",
			input:       "السعر شامل الضريبة",
			wantContain: []string{"السعر شامل الضريبة"},
		},
		{
			name:       "raw html dropped",
			input:      "<script>alert(1)</script>\n\nok",
			wantAbsent: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.RenderNotes(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("RenderNotes() unexpected error: %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(string(got), want) {
					t.Errorf("RenderNotes(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(string(got), absent) {
					t.Errorf("RenderNotes(%q) = %q, must not contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

func TestGoldmarkNotes_BlankInput(t *testing.T) {
	t.Parallel()

	got, err := NewGoldmarkNotes().RenderNotes(context.Background(), "  \n\t")
	if err != nil || got != "" {
		t.Errorf("RenderNotes(blank) = (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestGoldmarkNotes_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkNotes().RenderNotes(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderNotes() error = %v, want context.Canceled", err)
	}
}
