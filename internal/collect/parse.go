package collect

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tsmend/internal/diag"
)

// Line formats recognized by the collector. Everything else is skipped.
//
//	tsc:             src/a.ts(10,5): error TS2322: message
//	eslint compact:  src/a.ts: line 10, col 5, Error - message (rule)
//	eslint stylish:  a bare path line, then "  10:5  error  message  rule"
var (
	tscLineRE = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning) (TS\d+): (.+)$`)

	eslintCompactRE = regexp.MustCompile(`^(.+?): line (\d+), col (\d+), (Error|Warning) - (.+?)(?: \(([^()]+)\))?$`)

	// stylish: отступ, позиция, severity, message и rule разделены 2+ пробелами
	eslintStylishRE = regexp.MustCompile(`^\s+(\d+):(\d+)\s+(error|warning)\s+(.+?)\s{2,}(\S+)$`)
)

// Parser turns combined tool output into records. FileExists is
// injectable so the stylish current-file tracking is testable without a
// real tree.
type Parser struct {
	Root       string
	FileExists func(path string) bool
}

func (p Parser) abs(path string) string {
	if filepath.IsAbs(path) || p.Root == "" {
		return path
	}
	return filepath.Join(p.Root, path)
}

func (p Parser) exists(path string) bool {
	if p.FileExists == nil {
		return true
	}
	return p.FileExists(path)
}

// ParseTsc extracts records from tsc output. Malformed lines are skipped.
func (p Parser) ParseTsc(output string, bag *diag.Bag) {
	for _, line := range strings.Split(output, "\n") {
		m := tscLineRE.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		lineNum, err1 := strconv.Atoi(m[2])
		colNum, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			continue
		}
		r := diag.Record{
			FilePath: p.abs(m[1]),
			Line:     lineNum,
			Col:      colNum,
			Severity: diag.ParseSeverity(m[4]),
			Code:     diag.Code(m[5]),
			Message:  m[6],
		}
		if r.Actionable() {
			bag.Add(r)
		}
	}
}

// ParseEslint extracts records from eslint output in either compact or
// stylish format. Stylish output names the file once on its own line;
// the parser remembers the last-seen valid, existing path and attaches
// it to the indented diagnostic lines that follow.
func (p Parser) ParseEslint(output string, bag *diag.Bag) {
	currentFile := ""

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}

		if m := eslintCompactRE.FindStringSubmatch(line); m != nil {
			lineNum, err1 := strconv.Atoi(m[2])
			colNum, err2 := strconv.Atoi(m[3])
			if err1 != nil || err2 != nil {
				continue
			}
			r := diag.Record{
				FilePath: p.abs(m[1]),
				Line:     lineNum,
				Col:      colNum,
				Severity: diag.ParseSeverity(m[4]),
				Message:  m[5],
				Code:     diag.Code(m[6]),
			}
			if r.Actionable() {
				bag.Add(r)
			}
			continue
		}

		if m := eslintStylishRE.FindStringSubmatch(line); m != nil {
			if currentFile == "" {
				continue // diagnostic line before any path line
			}
			lineNum, err1 := strconv.Atoi(m[1])
			colNum, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil {
				continue
			}
			r := diag.Record{
				FilePath: currentFile,
				Line:     lineNum,
				Col:      colNum,
				Severity: diag.ParseSeverity(m[3]),
				Message:  strings.TrimSpace(m[4]),
				Code:     diag.Code(m[5]),
			}
			if r.Actionable() {
				bag.Add(r)
			}
			continue
		}

		// Кандидат на строку-путь: без отступа и файл существует.
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			candidate := p.abs(line)
			if looksLikeSourcePath(line) && p.exists(candidate) {
				currentFile = candidate
			}
		}
	}
}

func looksLikeSourcePath(line string) bool {
	if strings.ContainsAny(line, " \t") {
		return false
	}
	switch {
	case strings.HasSuffix(line, ".ts"), strings.HasSuffix(line, ".tsx"),
		strings.HasSuffix(line, ".js"), strings.HasSuffix(line, ".jsx"):
		return true
	}
	return false
}
