package tsparse

import (
	"strings"
	"testing"
)

func singleSite(t *testing.T, src string) Site {
	t.Helper()
	tree := Parse([]byte(src), "test.ts")
	if tree.Mode != ModeFull {
		t.Fatalf("expected full parse, got %s (errs: %v)", tree.Mode, tree.ScanErrs)
	}
	if len(tree.Sites) != 1 {
		t.Fatalf("sites = %d, want 1: %+v", len(tree.Sites), tree.Sites)
	}
	return tree.Sites[0]
}

func TestExtractFunctionParam(t *testing.T) {
	site := singleSite(t, "function f(items: any) { return items.map(x => x); }\n")
	if site.Kind != KindFunctionParam {
		t.Fatalf("kind = %s", site.Kind)
	}
	if site.Name != "items" {
		t.Fatalf("name = %q", site.Name)
	}
	if !site.HasOffsets() {
		t.Fatalf("full-mode site must carry offsets")
	}
	if site.Line != 1 {
		t.Fatalf("line = %d", site.Line)
	}
}

func TestExtractVariableDecl(t *testing.T) {
	site := singleSite(t, "let x: any;\n")
	if site.Kind != KindVariableDecl || site.Name != "x" {
		t.Fatalf("site = %+v", site)
	}
}

func TestExtractOptionalInterfaceProp(t *testing.T) {
	site := singleSite(t, "interface Props {\n  data?: any;\n}\n")
	if site.Kind != KindInterfaceProp || site.Name != "data" {
		t.Fatalf("site = %+v", site)
	}
	if site.Line != 2 {
		t.Fatalf("line = %d", site.Line)
	}
}

func TestExtractArrayAndGeneric(t *testing.T) {
	site := singleSite(t, "const xs: any[] = [];\n")
	if site.Kind != KindArrayElement {
		t.Fatalf("any[] kind = %s", site.Kind)
	}

	site = singleSite(t, "const a: Array<any> = [];\n")
	if site.Kind != KindArrayElement {
		t.Fatalf("Array<any> kind = %s", site.Kind)
	}

	site = singleSite(t, "const p: Promise<any> = load();\n")
	if site.Kind != KindGenericParam {
		t.Fatalf("Promise<any> kind = %s", site.Kind)
	}

	site = singleSite(t, "const m: Record<string, any> = {};\n")
	if site.Kind != KindGenericParam {
		t.Fatalf("Record kind = %s", site.Kind)
	}
}

func TestExtractReturnAndAssertion(t *testing.T) {
	site := singleSite(t, "function g(): any {\n  return 1;\n}\n")
	if site.Kind != KindFunctionReturn {
		t.Fatalf("return kind = %s", site.Kind)
	}

	site = singleSite(t, "const v = load() as any;\n")
	if site.Kind != KindTypeAssertion {
		t.Fatalf("as kind = %s", site.Kind)
	}
}

func TestExpressionPositionIgnored(t *testing.T) {
	tree := Parse([]byte("const any = 1;\nconsole.log(obj.any);\n"), "test.ts")
	if tree.Mode != ModeFull {
		t.Fatalf("mode = %s", tree.Mode)
	}
	if len(tree.Sites) != 0 {
		t.Fatalf("expression-position any must not be a site: %+v", tree.Sites)
	}
}

func TestAnyInsideStringsAndCommentsIgnored(t *testing.T) {
	src := "// let x: any;\nconst s = 'x: any';\nconst t = `y: any ${z}`;\n"
	tree := Parse([]byte(src), "test.ts")
	if tree.Mode != ModeFull {
		t.Fatalf("mode = %s (errs: %v)", tree.Mode, tree.ScanErrs)
	}
	if len(tree.Sites) != 0 {
		t.Fatalf("sites = %+v", tree.Sites)
	}
}

func TestUnbalancedFileFallsBackToDegraded(t *testing.T) {
	src := "function broken( {\nlet x: any;\nconst v = load() as any;\n"
	tree := Parse([]byte(src), "test.ts")
	if tree.Mode != ModeDegraded {
		t.Fatalf("expected degraded mode")
	}
	if len(tree.Sites) != 2 {
		t.Fatalf("degraded sites = %+v", tree.Sites)
	}
	for _, s := range tree.Sites {
		if s.HasOffsets() {
			t.Fatalf("degraded site must not carry offsets: %+v", s)
		}
	}
	if tree.Sites[0].Kind != KindVariableDecl || tree.Sites[0].Name != "x" {
		t.Fatalf("sites[0] = %+v", tree.Sites[0])
	}
	if tree.Sites[1].Kind != KindTypeAssertion {
		t.Fatalf("sites[1] = %+v", tree.Sites[1])
	}
}

func TestTooManyScanErrorsFallsBackToDegraded(t *testing.T) {
	var b strings.Builder
	for range 6 {
		b.WriteString("const s = 'unterminated\n")
	}
	b.WriteString("let x: any;\n")
	tree := Parse([]byte(b.String()), "test.ts")
	if tree.Mode != ModeDegraded {
		t.Fatalf("expected degraded mode, errs = %d", len(tree.ScanErrs))
	}
}

func TestValidSyntax(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"clean", "function f(x: number) { return x; }\n", true},
		{"unclosed brace", "function f() {\n", false},
		{"unterminated string", "const s = \"oops\n", false},
		{"stray close", "}\n", false},
		{"template ok", "const s = `a ${f({x: 1})} b`;\n", true},
		{"regex ok", "const re = /a[/]b/g;\n", true},
		{"comparison not a bracket", "if (a < b && c > d) { f(); }\n", true},
	}
	for _, tc := range cases {
		if got := ValidSyntax([]byte(tc.src)); got != tc.want {
			t.Errorf("%s: ValidSyntax = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestScannerRecoversAndKeepsOffsets(t *testing.T) {
	src := "const broken = 'oops\nlet y: any;\n"
	tree := Parse([]byte(src), "test.ts")
	if tree.Mode != ModeFull {
		t.Fatalf("one bad string should stay recoverable, mode = %s", tree.Mode)
	}
	if len(tree.Sites) != 1 || tree.Sites[0].Name != "y" {
		t.Fatalf("sites = %+v", tree.Sites)
	}
	site := tree.Sites[0]
	if got := src[site.CharStart:site.CharEnd]; got != "any" {
		t.Fatalf("offsets select %q", got)
	}
}
