package linefix

import (
	"testing"

	"tsmend/internal/diag"
)

func TestAwaitThenable(t *testing.T) {
	edit, ok := ApplyTo("  const v = await getValue();", "@typescript-eslint/await-thenable")
	if !ok {
		t.Fatalf("not applied")
	}
	if edit.New != "  const v = getValue();" {
		t.Fatalf("New = %q", edit.New)
	}

	// только первый await
	edit, ok = ApplyTo("await a(await b());", "@typescript-eslint/await-thenable")
	if !ok || edit.New != "a(await b());" {
		t.Fatalf("New = %q ok=%v", edit.New, ok)
	}

	if _, ok := ApplyTo("const v = getValue();", "@typescript-eslint/await-thenable"); ok {
		t.Fatalf("line without await must not match")
	}
}

func TestFloatingPromise(t *testing.T) {
	edit, ok := ApplyTo("    refresh();", "@typescript-eslint/no-floating-promises")
	if !ok || edit.New != "    void refresh();" {
		t.Fatalf("edit = %+v ok=%v", edit, ok)
	}

	if _, ok := ApplyTo("    void refresh();", "@typescript-eslint/no-floating-promises"); ok {
		t.Fatalf("already voided line must not match")
	}
}

func TestMisusedPromiseTimer(t *testing.T) {
	edit, ok := ApplyTo("setInterval(poll, 1000);", "@typescript-eslint/no-misused-promises")
	if !ok || edit.New != "setInterval(() => void poll(), 1000);" {
		t.Fatalf("edit = %+v ok=%v", edit, ok)
	}

	edit, ok = ApplyTo("setTimeout(save, 50);", "no-misused-promises")
	if !ok || edit.New != "setTimeout(() => void save(), 50);" {
		t.Fatalf("edit = %+v ok=%v", edit, ok)
	}
}

func TestPlanOrdersDescending(t *testing.T) {
	records := []diag.Record{
		{FilePath: "a.ts", Line: 3, Col: 1, Code: "@typescript-eslint/await-thenable"},
		{FilePath: "a.ts", Line: 9, Col: 1, Code: "@typescript-eslint/no-floating-promises"},
		{FilePath: "a.ts", Line: 5, Col: 1, Code: "unrelated-rule"},
		{FilePath: "a.ts", Line: 7, Col: 1, Code: "@typescript-eslint/no-misused-promises"},
	}
	planned := Plan(records)
	if len(planned) != 3 {
		t.Fatalf("planned = %d, want 3", len(planned))
	}
	for i := 1; i < len(planned); i++ {
		if planned[i].Line > planned[i-1].Line {
			t.Fatalf("not descending: %+v", planned)
		}
	}
}
