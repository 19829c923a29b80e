package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"sort"

	"tsmend/internal/classify"
	"tsmend/internal/diag"
	"tsmend/internal/linefix"
	"tsmend/internal/report"
	"tsmend/internal/source"
	"tsmend/internal/tsparse"
	"tsmend/internal/validate"
)

var anyTokenRE = regexp.MustCompile(`\bany\b`)

// processFile rewrites one file. Substitutions are validated one at a
// time; a failed site is reverted without aborting the rest. The error
// return is only errQuit: everything else lands in the FileResult.
func (e *Engine) processFile(ctx context.Context, path string, records []diag.Record, confirm Confirmer, dryRun bool) (report.FileResult, error) {
	fr := report.FileResult{Path: path, Outcome: report.OutcomeNoop}

	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		e.led.RecordError("io")
		fr.Outcome = report.OutcomeError
		fr.Detail = err.Error()
		return fr, nil
	}
	e.led.RecordFileProcessed()
	f := fset.Get(id)
	changed := false

	// Сначала построчные фиксы по правилам линтера: они детерминированы
	// и не требуют подтверждения.
	for _, r := range linefix.Plan(records) {
		if r.Line < 1 || r.Line > f.LineCount() {
			continue
		}
		lineNum := uint32(r.Line)
		edit, ok := linefix.ApplyTo(f.GetLine(lineNum), r.Code)
		if !ok {
			continue
		}
		candidate, ok := f.ReplaceLine(lineNum, edit.New)
		if !ok {
			continue
		}
		if err := validate.CheckReplacement(candidate, ""); err != nil {
			e.led.RecordDeclined("rule:" + edit.Rule)
			fr.Declined++
			continue
		}
		f = fset.Get(fset.Add(path, candidate, f.Flags))
		changed = true
		fr.Replacements++
		e.led.RecordReplacement("rule:" + edit.Rule)
	}

	tree := tsparse.Parse(f.Content, path)

	quit := false
	for _, site := range orderSites(tree) {
		if site.Line < 1 || int(site.Line) > f.LineCount() {
			continue
		}
		oldLine := f.GetLine(site.Line)

		proposal := classify.Propose(classify.Context{
			Site:       site,
			Line:       oldLine,
			Window:     window(f, site.Line, e.cfg.Inference.ContextWindow),
			Vocabulary: e.cfg.Inference.Vocabulary,
		}, e.cfg.Inference)

		if proposal.Skip {
			e.led.RecordSkipped(proposal.Reason)
			fr.Skipped++
			continue
		}

		candidate, newLine, ok := applySite(f, site, tree.Mode, proposal.NewType)
		if !ok {
			continue
		}

		change := Change{
			Path:    path,
			Line:    site.Line,
			OldLine: oldLine,
			NewLine: newLine,
			NewType: proposal.NewType,
			Reason:  proposal.Reason,
			Band:    proposal.Band().String(),
		}
		if tree.Mode == tsparse.ModeFull && site.HasOffsets() {
			start, _ := fset.Resolve(source.Span{File: f.ID, Start: uint32(site.CharStart), End: uint32(site.CharEnd)})
			change.Col = start.Col
		}

		decision, err := confirm.Confirm(change)
		if err != nil {
			quit = true
			break
		}
		if decision == DecisionAll {
			confirm = acceptAll{}
			decision = DecisionYes
		}

		switch decision {
		case DecisionQuit:
			quit = true
		case DecisionNo:
			e.led.RecordDeclined(proposal.Reason)
			fr.Declined++
		case DecisionYes:
			if err := validate.CheckReplacement(candidate, proposal.NewType); err != nil {
				if errors.Is(err, validate.ErrCorrupt) {
					e.led.RecordCorruption()
				}
				e.led.RecordDeclined(proposal.Reason)
				fr.Declined++
				continue
			}
			f = fset.Get(fset.Add(path, candidate, f.Flags))
			changed = true
			fr.Replacements++
			e.led.RecordReplacement(proposal.Reason)
		}
		if quit {
			break
		}
	}

	e.finalizeFile(path, f, changed, dryRun, &fr)
	if quit {
		return fr, errQuit
	}
	return fr, nil
}

// finalizeFile runs the whole-file gate and writes the result. On any
// failure the on-disk original stays untouched.
func (e *Engine) finalizeFile(path string, f *source.File, changed, dryRun bool, fr *report.FileResult) {
	if !changed {
		fr.Outcome = report.OutcomeNoop
		return
	}
	if sig, bad := validate.Corrupt(f.Content); bad {
		e.led.RecordError("corruption")
		e.led.RecordCorruption()
		fr.Outcome = report.OutcomeRejected
		fr.Detail = "corruption: " + sig
		return
	}
	if !tsparse.ValidSyntax(f.Content) {
		e.led.RecordError("syntax")
		fr.Outcome = report.OutcomeRejected
		fr.Detail = "result does not parse"
		return
	}
	if !dryRun {
		perm := fs.FileMode(0o644)
		if info, err := os.Stat(path); err == nil {
			perm = info.Mode().Perm()
		}
		// записываем в исходной кодировке: нетронутые строки обязаны
		// совпадать байт в байт
		if err := os.WriteFile(path, source.Denormalize(f.Content, f.Flags), perm); err != nil {
			e.led.RecordError("io")
			fr.Outcome = report.OutcomeError
			fr.Detail = err.Error()
			return
		}
	}
	fr.Outcome = report.OutcomeWritten
	if dryRun {
		fr.Detail = "not written (dry run)"
	}
}

// orderSites returns sites bottom-up so applying one substitution never
// shifts the offsets or line numbers of the sites still pending.
func orderSites(tree *tsparse.Tree) []tsparse.Site {
	sites := make([]tsparse.Site, len(tree.Sites))
	copy(sites, tree.Sites)
	sort.SliceStable(sites, func(i, j int) bool {
		if tree.Mode == tsparse.ModeFull && sites[i].HasOffsets() && sites[j].HasOffsets() {
			return sites[i].CharStart > sites[j].CharStart
		}
		return sites[i].Line > sites[j].Line
	})
	return sites
}

// applySite builds the candidate content for one substitution. Full
// trees edit by byte offset; degraded trees replace the first `any`
// token on the site's line.
func applySite(f *source.File, site tsparse.Site, mode tsparse.Mode, newType string) (candidate []byte, newLine string, ok bool) {
	if mode == tsparse.ModeFull && site.HasOffsets() {
		if site.CharEnd > len(f.Content) {
			return nil, "", false
		}
		out := make([]byte, 0, len(f.Content)-(site.CharEnd-site.CharStart)+len(newType))
		out = append(out, f.Content[:site.CharStart]...)
		out = append(out, newType...)
		out = append(out, f.Content[site.CharEnd:]...)

		newLine = f.GetLine(site.Line)
		if span, inLine := f.LineSpan(site.Line); inLine &&
			uint32(site.CharStart) >= span.Start && uint32(site.CharEnd) <= span.End {
			relStart := site.CharStart - int(span.Start)
			relEnd := site.CharEnd - int(span.Start)
			newLine = newLine[:relStart] + newType + newLine[relEnd:]
		}
		return out, newLine, true
	}

	old := f.GetLine(site.Line)
	loc := anyTokenRE.FindStringIndex(old)
	if loc == nil {
		return nil, "", false
	}
	fixed := old[:loc[0]] + newType + old[loc[1]:]
	candidate, replaced := f.ReplaceLine(site.Line, fixed)
	if !replaced {
		return nil, "", false
	}
	return candidate, fixed, true
}

// window returns up to n lines of context on each side of the given
// 1-based line, including the line itself.
func window(f *source.File, line uint32, n int) []string {
	lo := int(line) - n
	if lo < 1 {
		lo = 1
	}
	hi := int(line) + n
	if hi > f.LineCount() {
		hi = f.LineCount()
	}
	out := make([]string, 0, hi-lo+1)
	for ln := lo; ln <= hi; ln++ {
		out = append(out, f.GetLine(uint32(ln)))
	}
	return out
}
