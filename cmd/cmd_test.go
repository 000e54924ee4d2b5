package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tinyConfig = `calendar:
  days: ["Monday"]
  start: "08:00"
  slots: 4
policy:
  min_shift_slots: 2
  max_shift_slots: 4
  min_gatekeeper_slots: 2
  min_role_slots: 2
  morning_slots: 2
solver:
  max_time_seconds: 30
report:
  formats: ["json"]
`

func writeFiles(t *testing.T, roster string) (dir, cfg, rosterPath, reqPath string) {
	t.Helper()
	dir = t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	rosterPath = filepath.Join(dir, "roster.csv")
	reqPath = filepath.Join(dir, "requirements.csv")
	for path, data := range map[string]string{
		cfg:        tinyConfig,
		rosterPath: roster,
		reqPath:    "department,target_hours,max_hours\n",
	} {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir, cfg, rosterPath, reqPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		cfgPath = ""
		solveFlags.output, solveFlags.format, solveFlags.maxSeconds, solveFlags.metricsListen = "", "", 0, ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	_, cfg, roster, reqs := writeFiles(t, "employee,roles,max_hours,target_hours,year\nada,front_desk,2,2,1\n")
	out, err := execute(t, "validate", "-c", cfg, roster, reqs)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "inputs valid: 1 employees, 4 cells") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestValidateCommandFailsOnInvalidInput(t *testing.T) {
	_, cfg, roster, reqs := writeFiles(t, "employee,roles,max_hours,target_hours,year\nada,front_desk,2,3,1\n")
	if _, err := execute(t, "validate", "-c", cfg, roster, reqs); err == nil {
		t.Fatalf("expected target above cap to fail")
	}
}

func TestSolveCommandWritesOutput(t *testing.T) {
	dir, cfg, roster, reqs := writeFiles(t, "employee,roles,max_hours,target_hours,year\nada,front_desk,2,2,1\n")
	base := filepath.Join(dir, "result")
	if _, err := execute(t, "solve", "-c", cfg, "--output", base, "--format", "json,csv", "--max-solve-seconds", "20", roster, reqs); err != nil {
		t.Fatalf("solve: %v", err)
	}
	for _, ext := range []string{".json", ".csv"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Fatalf("missing %s output: %v", ext, err)
		}
	}
}

func TestSolveCommandNeedsTwoArgs(t *testing.T) {
	if _, err := execute(t, "solve", "only-one.csv"); err == nil {
		t.Fatalf("expected argument error")
	}
}
