package main

// Notes:
// - renderBatch: we use a mock exporter that records calls; browser exports
//   are covered by the root package's integration tests.
// - renderOne's write failure is tested with a file blocking the output
//   directory; permission-based failures are platform dependent.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock exporter and reserver
// ---------------------------------------------------------------------------

type mockExporter struct {
	mu      sync.Mutex
	calls   []string // document numbers in call order
	err     error
	block   chan struct{}
	started chan struct{}
}

func (m *mockExporter) Export(ctx context.Context, doc *dealerdocs.Document, format dealerdocs.ExportFormat) (*dealerdocs.Artifact, error) {
	m.mu.Lock()
	m.calls = append(m.calls, doc.Number)
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &dealerdocs.Artifact{
		Preview: &dealerdocs.Preview{Number: doc.Number},
		Format:  format,
		Data:    []byte("<html>" + doc.Number + "</html>"),
	}, nil
}

func (m *mockExporter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockReserver struct {
	mu       sync.Mutex
	reserved []string
}

func (m *mockReserver) Reserve(_ context.Context, id dealerdocs.Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserved = append(m.reserved, id.String())
	return nil
}

func documentJSON(number string) string {
	return strings.Replace(testDocument, "Q-000123", number, 1)
}

func newParams(reserver dealerdocs.Reserver) *renderParams {
	return &renderParams{
		format:   dealerdocs.FormatHTML,
		reserver: reserver,
		issuer: dealerdocs.NewGenerator(
			dealerdocs.WithClock(func() time.Time { return time.UnixMilli(1_700_000_123_456) }),
			dealerdocs.WithRandom(func(int) int { return 0 }),
		),
		read:   func(path string) ([]byte, error) { return os.ReadFile(path) },
		logger: zap.NewNop(),
	}
}

// ---------------------------------------------------------------------------
// TestPlanJobs - Output destinations
// ---------------------------------------------------------------------------

func TestPlanJobs(t *testing.T) {
	t.Parallel()

	existingDir := t.TempDir()

	tests := []struct {
		name       string
		inputs     []string
		output     string
		defaultDir string
		want       []renderJob
		wantErr    error
	}{
		{
			name:   "single input to file",
			inputs: []string{"docs/q.yaml"},
			output: "out/quote.pdf",
			want:   []renderJob{{InputPath: "docs/q.yaml", OutputPath: "out/quote.pdf"}},
		},
		{
			name:   "trailing slash is a directory",
			inputs: []string{"docs/q.yaml"},
			output: "out.d/",
			want:   []renderJob{{InputPath: "docs/q.yaml", OutputDir: "out.d/"}},
		},
		{
			name:   "existing directory with dot",
			inputs: []string{"q.yaml"},
			output: existingDir,
			want:   []renderJob{{InputPath: "q.yaml", OutputDir: existingDir}},
		},
		{
			name:       "default directory",
			inputs:     []string{"a.yaml", "b.yaml"},
			defaultDir: "/srv/out",
			want: []renderJob{
				{InputPath: "a.yaml", OutputDir: "/srv/out"},
				{InputPath: "b.yaml", OutputDir: "/srv/out"},
			},
		},
		{
			name:   "next to the input",
			inputs: []string{"docs/a.yaml", "-"},
			want: []renderJob{
				{InputPath: "docs/a.yaml", OutputDir: "docs"},
				{InputPath: "-", OutputDir: "."},
			},
		},
		{
			name:    "file output with many inputs",
			inputs:  []string{"a.yaml", "b.yaml"},
			output:  "out.pdf",
			wantErr: ErrUsage,
		},
		{
			name:    "stdin twice",
			inputs:  []string{"-", "-"},
			wantErr: ErrUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := planJobs(tt.inputs, tt.output, tt.defaultDir)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("planJobs() error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("planJobs() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("job %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderBatch - Worker pool behavior
// ---------------------------------------------------------------------------

func TestRenderBatch(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		if got := renderBatch(context.Background(), &mockExporter{}, 2, nil, newParams(nil)); got != nil {
			t.Errorf("renderBatch(nil) = %v", got)
		}
	})

	t.Run("results keep input order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		numbers := []string{"Q-000001", "Q-000002", "Q-000003", "Q-000004", "Q-000005"}
		jobs := make([]renderJob, len(numbers))
		for i, n := range numbers {
			jobs[i] = renderJob{InputPath: writeFile(t, dir, n+".json", documentJSON(n)), OutputDir: filepath.Join(dir, "out")}
		}

		mock := &mockExporter{}
		results := renderBatch(context.Background(), mock, 3, jobs, newParams(nil))

		if mock.Calls() != len(numbers) {
			t.Errorf("Export called %d times, want %d", mock.Calls(), len(numbers))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Errorf("result %d error: %v", i, r.Err)
				continue
			}
			want := filepath.Join(dir, "out", numbers[i]+".html")
			if r.InputPath != jobs[i].InputPath || r.OutputPath != want || r.Number != numbers[i] {
				t.Errorf("result %d = %+v", i, r)
			}
			if data, err := os.ReadFile(want); err != nil || !strings.Contains(string(data), numbers[i]) {
				t.Errorf("output %s = %q, %v", want, data, err)
			}
		}
	})

	t.Run("reserves missing numbers", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "doc.json", strings.Replace(testDocument, `"number": "Q-000123",`, "", 1))
		numbered := writeFile(t, dir, "numbered.json", testDocument)
		reserver := &mockReserver{}
		mock := &mockExporter{}

		results := renderBatch(context.Background(), mock, 1,
			[]renderJob{{InputPath: in, OutputDir: dir}, {InputPath: numbered, OutputDir: dir}},
			newParams(reserver))

		// 1_700_000_123_456 mod 1e6 = 123456
		if results[0].Err != nil || results[0].Number != "Q-123456" {
			t.Errorf("result = %+v, want Q-123456", results[0])
		}
		if len(reserver.reserved) != 1 || reserver.reserved[0] != "Q-123456" {
			t.Errorf("reserved = %v, want only the unnumbered document", reserver.reserved)
		}
	})

	t.Run("errors are per document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		good := writeFile(t, dir, "good.json", testDocument)
		invalid := writeFile(t, dir, "invalid.json", `{"kind": "receipt"}`)
		missing := filepath.Join(dir, "missing.json")

		results := renderBatch(context.Background(), &mockExporter{}, 2, []renderJob{
			{InputPath: good, OutputDir: dir},
			{InputPath: invalid, OutputDir: dir},
			{InputPath: missing, OutputDir: dir},
		}, newParams(nil))

		if results[0].Err != nil {
			t.Errorf("good document failed: %v", results[0].Err)
		}
		if !errors.Is(results[1].Err, dealerdocs.ErrInvalidKind) {
			t.Errorf("invalid document error = %v, want ErrInvalidKind", results[1].Err)
		}
		if !errors.Is(results[2].Err, os.ErrNotExist) {
			t.Errorf("missing document error = %v, want os.ErrNotExist", results[2].Err)
		}
	})

	t.Run("exporter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "doc.json", testDocument)
		mock := &mockExporter{err: dealerdocs.ErrExportTimeout}

		results := renderBatch(context.Background(), mock, 1, []renderJob{{InputPath: in, OutputDir: dir}}, newParams(nil))
		if !errors.Is(results[0].Err, dealerdocs.ErrExportTimeout) {
			t.Errorf("error = %v, want ErrExportTimeout", results[0].Err)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "doc.json", testDocument)
		blocker := writeFile(t, dir, "blocker", "")

		results := renderBatch(context.Background(), &mockExporter{}, 1,
			[]renderJob{{InputPath: in, OutputDir: filepath.Join(blocker, "sub")}}, newParams(nil))
		if !errors.Is(results[0].Err, ErrWriteOutput) {
			t.Errorf("error = %v, want ErrWriteOutput", results[0].Err)
		}
	})

	t.Run("cancelled context skips queued jobs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		jobs := []renderJob{
			{InputPath: writeFile(t, dir, "a.json", documentJSON("Q-000001")), OutputDir: dir},
			{InputPath: writeFile(t, dir, "b.json", documentJSON("Q-000002")), OutputDir: dir},
		}
		ctx, cancel := context.WithCancel(context.Background())
		mock := &mockExporter{block: make(chan struct{}), started: make(chan struct{}, 1)}

		done := make(chan []renderResult)
		go func() { done <- renderBatch(ctx, mock, 1, jobs, newParams(nil)) }()

		<-mock.started
		cancel()
		results := <-done

		for i, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("result %d error = %v, want context.Canceled", i, r.Err)
			}
		}
		if mock.Calls() != 1 {
			t.Errorf("Export called %d times, want 1", mock.Calls())
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []renderResult{
		{InputPath: "a.yaml", OutputPath: "out/Q-000001.pdf", Number: "Q-000001", Duration: 1500 * time.Millisecond},
		{InputPath: "<stdin>", Err: errors.New("boom")},
	}

	tests := []struct {
		name           string
		quiet, verbose bool
		wantStdout     []string
		notStdout      []string
	}{
		{"default", false, false, []string{"Created out/Q-000001.pdf", "1 succeeded, 1 failed"}, nil},
		{"verbose", false, true, []string{"a.yaml -> out/Q-000001.pdf [Q-000001] (1.5s)"}, []string{"Created"}},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv("")
			if failed := printResults(results, tt.quiet, tt.verbose, env); failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED <stdin>: boom") {
				t.Errorf("stderr = %q", stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q: %q", want, stdout.String())
				}
			}
			for _, not := range tt.notStdout {
				if strings.Contains(stdout.String(), not) {
					t.Errorf("stdout should not contain %q: %q", not, stdout.String())
				}
			}
		})
	}

	t.Run("single result has no summary", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}
		printResults(results[:1], false, false, env)
		if strings.Contains(stdout.String(), "succeeded") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestWithRenderHint - Remedies for single failures
// ---------------------------------------------------------------------------

func TestWithRenderHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{"timeout", dealerdocs.ErrExportTimeout, "export timeout is fixed"},
		{"family", dealerdocs.ErrTemplateNotFound, "pdfTemplate must name one of: "},
		{"company", dealerdocs.ErrInvalidCompanyRecord, "dealerdocs style"},
		{"write", ErrWriteOutput, "output directory is writable"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withRenderHint(tt.err, 2)
			if !errors.Is(got, tt.err) {
				t.Errorf("hinted error lost its cause: %v", got)
			}
			if tt.wantHint == "" {
				if strings.Contains(got.Error(), "hint:") {
					t.Errorf("unexpected hint: %v", got)
				}
				return
			}
			if !strings.Contains(got.Error(), tt.wantHint) {
				t.Errorf("error = %q, want hint %q", got, tt.wantHint)
			}
		})
	}
}
