package engine

import (
	"sort"
	"strings"

	"tsmend/internal/diag"
)

// filePriority ranks a file by its diagnostic count, ten points per
// diagnostic, plus a fixed per-directory weight. A weight lifts a file
// past at most a few diagnostics; it never outranks a much noisier one.
func filePriority(path string, records []diag.Record, weights map[string]int) int {
	score := len(records) * 10
	best := 0
	lower := strings.ToLower(path)
	for fragment, w := range weights {
		if strings.Contains(lower, strings.ToLower(fragment)) && w > best {
			best = w
		}
	}
	return score + best
}

// orderFiles returns file paths sorted by descending priority, ties
// broken by path for determinism.
func orderFiles(byFile map[string][]diag.Record, weights map[string]int) []string {
	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		pi := filePriority(paths[i], byFile[paths[i]], weights)
		pj := filePriority(paths[j], byFile[paths[j]], weights)
		if pi != pj {
			return pi > pj
		}
		return paths[i] < paths[j]
	})
	return paths
}
