package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "webapp"

[inference]
confidence_threshold = 0.5

[inference.vocabulary]
ingredient = "Ingredient"
recipe = "Recipe"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "webapp" {
		t.Fatalf("name = %q", cfg.Project.Name)
	}
	if cfg.Inference.ConfidenceThreshold != 0.5 {
		t.Fatalf("threshold = %v", cfg.Inference.ConfidenceThreshold)
	}
	want := map[string]string{"ingredient": "Ingredient", "recipe": "Recipe"}
	if diff := cmp.Diff(want, cfg.Inference.Vocabulary); diff != "" {
		t.Fatalf("vocabulary mismatch (-want +got):\n%s", diff)
	}
	// дефолты из невыставленных секций должны остаться
	if cfg.Safety.MinBatch != 5 || cfg.Safety.MaxBatch != 50 {
		t.Fatalf("safety defaults lost: %+v", cfg.Safety)
	}
	if len(cfg.Tools.Checker) == 0 {
		t.Fatalf("tools defaults lost")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	for name, body := range map[string]string{
		"blank name":    "[project]\nname = \"  \"\n",
		"bad threshold": "[inference]\nconfidence_threshold = 1.5\n",
		"batch order":   "[safety]\nmin_batch = 10\nmax_batch = 2\n",
	} {
		path := writeManifest(t, dir, body)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"x\"\n")
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %q, want under %q", path, root)
	}
}

func TestLoadForWithoutManifest(t *testing.T) {
	// /tmp itself may have a parent manifest in pathological setups; use
	// a throwaway nested dir and only assert defaults when none found.
	dir := t.TempDir()
	cfg, path, err := LoadFor(dir)
	if err != nil {
		t.Fatalf("LoadFor: %v", err)
	}
	if path == "" {
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
		}
	}
}
