package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestAddFoldsCounters(t *testing.T) {
	var r Report
	r.Add(FileResult{Path: "a.ts", Outcome: OutcomeWritten, Replacements: 3})
	r.Add(FileResult{Path: "b.ts", Outcome: OutcomeNoop})

	if r.Replacements != 3 {
		t.Fatalf("Replacements = %d, want 3", r.Replacements)
	}
	if len(r.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(r.Files))
	}
}

func TestPartial(t *testing.T) {
	cases := []struct {
		name string
		rep  Report
		want bool
	}{
		{"clean", Report{Files: []FileResult{{Outcome: OutcomeWritten}}}, false},
		{"rejected file", Report{Files: []FileResult{{Outcome: OutcomeRejected}}}, true},
		{"errored file", Report{Files: []FileResult{{Outcome: OutcomeError}}}, true},
		{"failed checkpoint", Report{CheckpointFailed: true}, true},
	}
	for _, tc := range cases {
		if got := tc.rep.Partial(); got != tc.want {
			t.Errorf("%s: Partial() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	rep := Report{
		Files:            []FileResult{{Path: "a.ts", Outcome: OutcomeWritten, Replacements: 2}},
		BatchSize:        5,
		TotalDiagnostics: 7,
		Replacements:     2,
		SnapshotHandle:   "abc123",
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.BatchSize != 5 || decoded.Replacements != 2 || decoded.SnapshotHandle != "abc123" {
		t.Fatalf("round trip lost fields: %+v", decoded)
	}
	if len(decoded.Files) != 1 || decoded.Files[0].Outcome != OutcomeWritten {
		t.Fatalf("round trip lost file results: %+v", decoded.Files)
	}
}

func TestWriteTextSummarizes(t *testing.T) {
	rep := Report{
		Files: []FileResult{
			{Path: "src/b.ts", Outcome: OutcomeWritten, Replacements: 1},
			{Path: "src/a.ts", Outcome: OutcomeRejected, Detail: "corruption: doubled-colon"},
		},
		BatchSize:      2,
		Replacements:   1,
		SnapshotHandle: "deadbeef",
	}

	var buf bytes.Buffer
	rep.WriteText(&buf)
	out := buf.String()

	for _, want := range []string{
		"2 file(s), batch 2",
		"src/a.ts",
		"doubled-colon",
		"totals: 1 replaced, 1 written, 0 no-op, 1 rejected, 0 error",
		"git stash apply deadbeef",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	// files listed in path order
	if strings.Index(out, "src/a.ts") > strings.Index(out, "src/b.ts") {
		t.Fatalf("files not sorted by path:\n%s", out)
	}
}
