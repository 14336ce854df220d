package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pcg/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const familyYAML = `
name: family
concept_types:
  - label: Person
relation_types:
  - label: Parent
    valence: 2
graphs:
  - "[Person *a: 'Ann'] [Person *b: 'Bob'] (Parent ?a ?b)"
processes:
  - name: ancestry
    rules:
      - name: derive
        match:
          - graph: "[Person *x: *p] [Person *y: *c] (Parent ?x ?y)"
        mutate:
          - graph: "[Person *x: ?p] [Person *y: ?c] (Ancestor ?x ?y)"
            export: true
`

// newTestCommand resets the globals a command reads and captures its output
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	inputFormat = ""
	showMetrics = false

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCheckReprintsGraph(t *testing.T) {
	cmd, out := newTestCommand(t)
	path := writeFile(t, "g.cgif", `[Person: 'Ann']`)

	if err := runCheck(cmd, []string{path}); err != nil {
		t.Fatalf("runCheck failed: %v", err)
	}
	if !strings.Contains(out.String(), "[Person: 'Ann']") {
		t.Errorf("unexpected output: %q", out.String())
	}

	cmd, out = newTestCommand(t)
	cfg.Codec.Format = "json"
	if err := runCheck(cmd, []string{path}); err != nil {
		t.Fatalf("runCheck failed: %v", err)
	}
	if !strings.Contains(out.String(), `"concepts"`) {
		t.Errorf("expected JSON output, got %q", out.String())
	}
}

func TestCheckRejectsBadGraphs(t *testing.T) {
	cmd, _ := newTestCommand(t)
	if err := runCheck(cmd, []string{writeFile(t, "bad.cgif", `[Person`)}); err == nil {
		t.Error("expected a parse error")
	}
	if err := runCheck(cmd, []string{filepath.Join(t.TempDir(), "missing.cgif")}); err == nil {
		t.Error("expected an error for a missing file")
	}
	inputFormat = "dot"
	if err := runCheck(cmd, []string{writeFile(t, "g.cgif", `[A]`)}); err == nil {
		t.Error("expected an error for an unknown input format")
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := map[string]string{
		"g.cgif":  "cgif",
		"g.YAML":  "yaml",
		"g.yml":   "yaml",
		"g.json":  "json",
		"graph":   "cgif",
		"a/b.txt": "cgif",
	}
	for path, want := range tests {
		if got := formatFromExt(path); got != want {
			t.Errorf("formatFromExt(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	cmd, out := newTestCommand(t)
	if err := runDescribe(cmd, []string{writeFile(t, "family.yaml", familyYAML)}); err != nil {
		t.Fatalf("runDescribe failed: %v", err)
	}
	for _, want := range []string{"Concept Types", "Processes", "ancestry(in: ; out: ) 1 rules"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProject(t *testing.T) {
	cmd, out := newTestCommand(t)
	err := runProject(cmd, []string{`(Likes [Dog: 'Rex'] [Ball])`, `(Likes [Dog: *who] [Ball])`})
	if err != nil {
		t.Fatalf("runProject failed: %v", err)
	}
	if !strings.Contains(out.String(), "*who = ") {
		t.Errorf("expected the bound variable, got %q", out.String())
	}

	cmd, out = newTestCommand(t)
	if err := runProject(cmd, []string{`(Likes [Dog] [Ball])`, `(Hates [Dog] [Ball])`}); err != nil {
		t.Fatalf("runProject failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "no projection" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestRunAndCanon(t *testing.T) {
	cmd, out := newTestCommand(t)
	cfg.Canon.Path = filepath.Join(t.TempDir(), "canon.db")
	showMetrics = true
	path := writeFile(t, "family.yaml", familyYAML)

	if err := runProcess(cmd, []string{path, "ancestry"}); err != nil {
		t.Fatalf("runProcess failed: %v", err)
	}
	for _, want := range []string{"ancestry: ", "1 exports", "+ ", "Ancestor", "metrics:", "pcg_process_runs_total{outcome=ok}"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := showCanon(cmd, nil); err != nil {
		t.Fatalf("showCanon failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "family" {
		t.Errorf("expected the family canon, got %q", out.String())
	}

	out.Reset()
	if err := showCanon(cmd, []string{"family"}); err != nil {
		t.Fatalf("showCanon failed: %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 2 {
		t.Errorf("expected 2 graphs, got %d:\n%s", got, out.String())
	}
}

func TestRunUnknownProcess(t *testing.T) {
	cmd, _ := newTestCommand(t)
	if err := runProcess(cmd, []string{writeFile(t, "family.yaml", familyYAML), "missing"}); err == nil {
		t.Error("expected an error for an unknown process")
	}
}

func TestCanonRequiresDatabase(t *testing.T) {
	cmd, _ := newTestCommand(t)
	if err := showCanon(cmd, nil); err == nil {
		t.Error("expected an error without a canon database")
	}
}
