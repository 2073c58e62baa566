package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var sampleReport = filepath.Join("..", "..", "..", "pkg", "klarf", "testdata", "sample.klarf")

// resetFlags restores every flag variable; cobra keeps values between
// Execute calls on the same command tree.
func resetFlags() {
	verbose = false
	configPath = ""
	showIssues = false
	strict = false
	outputJSON = false
	onlyDefective = false
	dieFilter = ""
	layoutWidth = 0
	layoutHeight = 0
	preserveAspect = false
	scanExtensions = nil
	scanSummary = false
	scanJobs = runtime.NumCPU()
	exportOutput = ""
}

// execute runs the CLI with args and an isolated config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.hcl")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestCommandsE2E(t *testing.T) {
	incomplete := writeFile(t, t.TempDir(), "partial.klarf", "LotID L1;\nDiePitch abc 1;\nEndOfFile;\n")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "parse summary",
			args: []string{"parse", sampleReport},
			wantContain: []string{
				"Lot: LOT42",
				"Dies:           6",
				"Defective dies: 2",
				"Defects:        5",
				"Unlinked:       1",
				"✓ All mandatory fields present",
			},
		},
		{
			name: "parse incomplete lists warnings and issues",
			args: []string{"parse", "--issues", incomplete},
			wantContain: []string{
				"⚠ Missing: WaferID, TiffFilename, FileTimestamp, die list, defect list",
				"Issues: 1 line(s) skipped",
				"line 2: DiePitch",
			},
		},
		{
			name:    "parse strict fails on warnings",
			args:    []string{"parse", "--strict", incomplete},
			wantErr: true,
		},
		{
			name:    "parse missing file",
			args:    []string{"parse", "does-not-exist.klarf"},
			wantErr: true,
		},
		{
			name:        "info",
			args:        []string{"info", sampleReport},
			wantContain: []string{"Wafer:           W03 (slot 3)", "Station:         KLA-TENCOR SP2 A1", "lot42_w03.tif"},
		},
		{
			name:        "dies defective only",
			args:        []string{"dies", "--defective", sampleReport},
			wantContain: []string{"2 of 6 dies, 2 defective"},
		},
		{
			name:        "defects of one die",
			args:        []string{"defects", "--die", "1,0", sampleReport},
			wantContain: []string{"1/3", "2/3", "3/3", "3 defect(s)"},
		},
		{
			name:        "all defects",
			args:        []string{"defects", sampleReport},
			wantContain: []string{"5 defect(s)", "      -\n"},
		},
		{
			name:    "defects of missing die",
			args:    []string{"defects", "--die", "7,7", sampleReport},
			wantErr: true,
		},
		{
			name:    "defects bad die flag",
			args:    []string{"defects", "--die", "seven", sampleReport},
			wantErr: true,
		},
		{
			name:        "layout table",
			args:        []string{"layout", "--width", "300", "--height", "200", sampleReport},
			wantContain: []string{"Canvas 300x200, grid 300.00x200.00, 6 cell(s)"},
		},
		{
			name:        "layout synthetic",
			args:        []string{"layout", "--width", "100", "--height", "100", incomplete},
			wantContain: []string{"(synthetic)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestInfoJSON(t *testing.T) {
	output, err := execute(t, "info", "--json", sampleReport)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	var info ReportInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if info.LotID != "LOT42" || info.WaferID != "W03" {
		t.Errorf("ids = %q/%q", info.LotID, info.WaferID)
	}
	if info.Dies != 6 || info.TotalDies != 6 || info.DefectiveDies != 2 || info.Defects != 5 {
		t.Errorf("counts = %+v", info)
	}
	if info.FileTimestamp != "09-25-2018 10:36:10" {
		t.Errorf("FileTimestamp = %q", info.FileTimestamp)
	}
	if len(info.Warnings) != 0 {
		t.Errorf("Warnings = %v", info.Warnings)
	}
}

func TestLayoutJSON(t *testing.T) {
	output, err := execute(t, "layout", "--json", "--width", "300", "--height", "200", sampleReport)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	var l LayoutInfo
	if err := json.Unmarshal([]byte(output), &l); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if l.Synthetic || len(l.Cells) != 6 {
		t.Fatalf("got %d cells, synthetic=%v", len(l.Cells), l.Synthetic)
	}
	// Die (1,0) is in the bottom row, middle column.
	for _, c := range l.Cells {
		if c.X == 1 && c.Y == 0 {
			if math.Abs(c.Left-100) > 1e-9 || math.Abs(c.Top-100) > 1e-9 || c.Defects != 3 {
				t.Errorf("cell (1,0) = %+v", c)
			}
		}
	}
}

func TestScanE2E(t *testing.T) {
	data, err := os.ReadFile(sampleReport)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	dir := t.TempDir()
	writeFile(t, dir, "a.klarf", string(data))
	writeFile(t, dir, filepath.Join("lot", "b.001"), string(data))
	writeFile(t, dir, "notes.txt", "not a report")

	output, err := execute(t, "scan", dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(output, "2 file(s)") {
		t.Errorf("unexpected scan output:\n%s", output)
	}

	output, err = execute(t, "scan", "--summary", "--jobs", "2", dir)
	if err != nil {
		t.Fatalf("scan --summary failed: %v", err)
	}
	if strings.Count(output, "LOT42") != 2 || !strings.Contains(output, "0 unreadable") {
		t.Errorf("unexpected summary output:\n%s", output)
	}

	output, err = execute(t, "scan", "--ext", ".txt", dir)
	if err != nil {
		t.Fatalf("scan --ext failed: %v", err)
	}
	if !strings.Contains(output, "notes.txt") || !strings.Contains(output, "1 file(s)") {
		t.Errorf("unexpected --ext output:\n%s", output)
	}
}

func TestExportE2E(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defects.xlsx")
	output, err := execute(t, "export", sampleReport, "-o", path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(output, "✓ Wrote 5 defect(s)") {
		t.Errorf("unexpected output: %s", output)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	resetFlags()
	path := writeFile(t, t.TempDir(), "klarf.hcl", `log_level = "loud"`)

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--config", path, "parse", sampleReport})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestConfigAppliesToLayout(t *testing.T) {
	resetFlags()
	path := writeFile(t, t.TempDir(), "klarf.hcl", "view {\n  width  = 600\n  height = 400\n}\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--config", path, "layout", sampleReport})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	if !strings.Contains(out.String(), "Canvas 600x400") {
		t.Errorf("config size not applied:\n%s", out.String())
	}
}

func TestExecuteExitCode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"dies", sampleReport}, 0},
		{"unknown command", []string{"bogus"}, 1},
		{"view missing report", []string{"view", filepath.Join(t.TempDir(), "missing.klarf")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			var errOut bytes.Buffer
			rootCmd.SetOut(io.Discard)
			rootCmd.SetErr(&errOut)
			rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.hcl")}, tt.args...))

			if got := Execute(); got != tt.want {
				t.Fatalf("Execute() = %d, want %d (stderr %q)", got, tt.want, errOut.String())
			}
			if tt.want != 0 && errOut.Len() == 0 {
				t.Error("expected the error on stderr")
			}
		})
	}
}
