package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/plan"
)

const testPlan = "../../internal/config/testdata/plan.yaml"

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", cfg: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestInitializeLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "planner.log")
	logger, err := initializeLogger(config.LoggingConfig{Level: "info", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestRunSolveJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runSolve(context.Background(), &buf, testPlan, "json", "error"); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}

	var plans []plan.Plan
	if err := json.Unmarshal(buf.Bytes(), &plans); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 active scenarios, got %d", len(plans))
	}
	if plans[0].Name != "Circuits" || plans[1].Name != "Research" {
		t.Errorf("unexpected scenario order: %s, %s", plans[0].Name, plans[1].Name)
	}
}

func TestRunSolveCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := runSolve(context.Background(), &buf, testPlan, "csv", "error"); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "scenario,result,step") {
		t.Errorf("unexpected CSV header: %q", buf.String())
	}
}

func TestRunSolveErrors(t *testing.T) {
	if err := runSolve(context.Background(), &bytes.Buffer{}, "missing.yaml", "", "error"); err == nil {
		t.Error("expected error for missing plan")
	}
	if err := runSolve(context.Background(), &bytes.Buffer{}, testPlan, "xml", "error"); err == nil {
		t.Error("expected error for invalid output format")
	}
}

func TestRunValidate(t *testing.T) {
	var buf bytes.Buffer
	if err := runValidate(&buf, testPlan, "error"); err != nil {
		t.Fatalf("runValidate failed: %v", err)
	}
	for _, name := range []string{"Circuits", "Research", "Burner"} {
		if !strings.Contains(buf.String(), "✓ "+name) {
			t.Errorf("missing scenario %s in output:\n%s", name, buf.String())
		}
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"solve", "validate", "serve"} {
		if !names[want] {
			t.Errorf("missing subcommand %s", want)
		}
	}
	if root.Version != version {
		t.Errorf("version = %q, want %q", root.Version, version)
	}
}
