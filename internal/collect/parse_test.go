package collect

import (
	"context"
	"strings"
	"testing"

	"tsmend/internal/config"
	"tsmend/internal/diag"
)

func TestParseTscRoundTrip(t *testing.T) {
	output := "src/a.ts(10,5): warning TS1234: 'x' is declared but its value is never read.\n" +
		"some unrelated build noise\n"

	bag := diag.NewBag(10)
	Parser{}.ParseTsc(output, bag)

	if bag.Len() != 1 {
		t.Fatalf("records = %d, want 1", bag.Len())
	}
	r := bag.Items()[0]
	if !strings.HasSuffix(r.FilePath, "src/a.ts") {
		t.Fatalf("FilePath = %q", r.FilePath)
	}
	if r.Line != 10 || r.Col != 5 {
		t.Fatalf("pos = %d:%d, want 10:5", r.Line, r.Col)
	}
	if r.Code != "TS1234" || r.Severity != diag.SevWarning {
		t.Fatalf("code/severity = %s/%s", r.Code, r.Severity)
	}
}

func TestParseTscSkipsMalformedPositions(t *testing.T) {
	bag := diag.NewBag(10)
	Parser{}.ParseTsc("src/a.ts(0,5): error TS1: nope\n", bag)
	if bag.Len() != 0 {
		t.Fatalf("line 0 must be skipped, got %d records", bag.Len())
	}
}

func TestParseEslintCompact(t *testing.T) {
	output := "src/b.ts: line 3, col 7, Error - Unexpected any. Specify a different type. (@typescript-eslint/no-explicit-any)\n"

	bag := diag.NewBag(10)
	Parser{}.ParseEslint(output, bag)

	if bag.Len() != 1 {
		t.Fatalf("records = %d, want 1", bag.Len())
	}
	r := bag.Items()[0]
	if r.Code != "@typescript-eslint/no-explicit-any" {
		t.Fatalf("code = %q", r.Code)
	}
	if r.Line != 3 || r.Col != 7 || r.Severity != diag.SevError {
		t.Fatalf("record = %+v", r)
	}
}

func TestParseEslintStylishTracksCurrentFile(t *testing.T) {
	output := strings.Join([]string{
		"src/real.ts",
		"  10:2  error  Unexpected any  @typescript-eslint/no-explicit-any",
		"  12:4  warning  Missing return type  @typescript-eslint/explicit-function-return-type",
		"src/ghost.ts", // не существует — контекст не должен переключиться
		"  1:1  error  Phantom  some-rule",
		"",
	}, "\n")

	p := Parser{FileExists: func(path string) bool {
		return strings.HasSuffix(path, "real.ts")
	}}
	bag := diag.NewBag(10)
	p.ParseEslint(output, bag)

	if bag.Len() != 3 {
		t.Fatalf("records = %d, want 3", bag.Len())
	}
	for _, r := range bag.Items() {
		if !strings.HasSuffix(r.FilePath, "real.ts") {
			t.Fatalf("record attributed to %q", r.FilePath)
		}
	}
}

func TestParseEslintIgnoresLeadingDiagnosticLines(t *testing.T) {
	p := Parser{FileExists: func(string) bool { return false }}
	bag := diag.NewBag(10)
	p.ParseEslint("  5:1  error  Orphan  rule-x\n", bag)
	if bag.Len() != 0 {
		t.Fatalf("orphan diagnostic must be dropped, got %d", bag.Len())
	}
}

type fakeRunner struct {
	results map[string]ToolResult
	errs    map[string]error
}

func (f fakeRunner) Run(_ context.Context, _ string, argv []string) (ToolResult, error) {
	key := argv[0]
	if err, ok := f.errs[key]; ok {
		return ToolResult{}, err
	}
	return f.results[key], nil
}

func TestCollectMergesBothTools(t *testing.T) {
	c := &Collector{
		Runner: fakeRunner{results: map[string]ToolResult{
			"tsc": {ExitCode: 2, Stdout: "src/a.ts(1,1): error TS2322: boom\n"},
			"eslint": {ExitCode: 1, Stdout: "src/a.ts: line 2, col 1, Warning - meh (rule-y)\n"},
		}},
		Cfg: config.ToolsConfig{
			Checker: []string{"tsc"},
			Linter:  []string{"eslint"},
		},
	}

	bag, warnings, err := c.Collect(context.Background(), 100)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if bag.Len() != 2 {
		t.Fatalf("records = %d, want 2", bag.Len())
	}
}

func TestCollectTimeoutIsWarning(t *testing.T) {
	c := &Collector{
		Runner: fakeRunner{
			results: map[string]ToolResult{
				"tsc": {Stdout: "src/a.ts(1,1): error TS2322: boom\n"},
			},
			errs: map[string]error{"eslint": ErrToolTimeout},
		},
		Cfg: config.ToolsConfig{
			Checker: []string{"tsc"},
			Linter:  []string{"eslint"},
		},
	}

	bag, warnings, err := c.Collect(context.Background(), 100)
	if err != nil {
		t.Fatalf("Collect must survive a timeout: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Tool != "linter" {
		t.Fatalf("warnings = %+v", warnings)
	}
	if bag.Len() != 1 {
		t.Fatalf("checker records must be kept, got %d", bag.Len())
	}
}

func TestCollectMissingBinaryIsFatal(t *testing.T) {
	c := &Collector{
		Runner: fakeRunner{errs: map[string]error{"tsc": ErrToolMissing}},
		Cfg: config.ToolsConfig{
			Checker: []string{"tsc"},
			Linter:  []string{"eslint"},
		},
	}
	if _, _, err := c.Collect(context.Background(), 100); err == nil {
		t.Fatalf("missing binary must be fatal")
	}
}
