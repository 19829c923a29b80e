package classify

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"tsmend/internal/config"
	"tsmend/internal/tsparse"
)

// Context carries everything a heuristic may inspect: the site, its
// line, and a small window of surrounding lines. Heuristics are pure;
// all mutation happens in the orchestrator.
type Context struct {
	Site       tsparse.Site
	Line       string
	Window     []string // includes the site line
	Vocabulary map[string]string
}

func (c Context) windowText() string {
	return strings.Join(c.Window, "\n")
}

// Heuristic is one (predicate, proposal-builder) pair in the chain.
// Score is fixed per heuristic and compared against the configured
// confidence threshold; keeping both as plain data means thresholds are
// tunable without touching match logic.
type Heuristic struct {
	Name  string
	Score float64
	Match func(Context) (Proposal, bool)
}

// Chain returns the heuristics in priority order. Evaluation is strictly
// first-match-wins: more specific heuristics always beat the fallback,
// and within the context-window tier the sub-pattern order below is the
// tie-break.
func Chain() []Heuristic {
	return []Heuristic{
		{Name: "protected-context", Score: 1.0, Match: matchProtected},
		{Name: "vocabulary", Score: 0.9, Match: matchVocabulary},
		{Name: "array-usage", Score: 0.8, Match: matchArrayUsage},
		{Name: "promise-usage", Score: 0.75, Match: matchPromiseUsage},
		{Name: "record-usage", Score: 0.6, Match: matchRecordUsage},
		{Name: "event-handler", Score: 0.7, Match: matchEventHandler},
		{Name: "callback-shape", Score: 0.5, Match: matchCallbackShape},
	}
}

// Propose runs the chain over a site. Heuristics scoring below the
// threshold are skipped; when nothing matches, the conservative
// `unknown` fallback wins. The fallback never fails validation.
func Propose(ctx Context, cfg config.InferenceConfig) Proposal {
	for _, h := range Chain() {
		if h.Score < cfg.ConfidenceThreshold {
			continue
		}
		if p, ok := h.Match(ctx); ok {
			p.Score = h.Score
			p.Reason = h.Name
			p.NewType = adjustForSite(ctx.Site, p.NewType)
			return p
		}
	}
	return Proposal{
		NewType: adjustForSite(ctx.Site, "unknown"),
		Score:   0.4,
		Reason:  "fallback-unknown",
	}
}

// adjustForSite converts a proposal to element position for `any[]` and
// `Array<any>` sites, where the replacement stands for the element type.
func adjustForSite(site tsparse.Site, newType string) string {
	if site.Kind != tsparse.KindArrayElement {
		return newType
	}
	return strings.TrimSuffix(newType, "[]")
}

var (
	catchParamRE    = regexp.MustCompile(`\bcatch\s*\(`)
	promiseCatchRE  = regexp.MustCompile(`\.catch\s*\(`)
	throwErrorRE    = regexp.MustCompile(`\bthrow\s+new\s+\w*Error`)
	loggingCallRE   = regexp.MustCompile(`\b(?:console|logger|log)\.\w+\s*\(`)
	defaultConfigRE = regexp.MustCompile(`^\s*export\s+const\s+\w*[Cc]onfig\w*\s*=`)
	pluginSigRE     = regexp.MustCompile(`\b(?:plugin|middleware)\s*\(\s*\w*(?:opts|options)?\w*\s*:\s*any`)
)

// matchProtected preserves sites that sit inside error-handling or
// configuration context. These are intentional `any`s; rewriting them
// trades working code for type cosmetics.
func matchProtected(ctx Context) (Proposal, bool) {
	window := ctx.windowText()
	switch {
	case catchParamRE.MatchString(ctx.Line),
		promiseCatchRE.MatchString(ctx.Line),
		throwErrorRE.MatchString(window),
		loggingCallRE.MatchString(window) && ctx.Site.Kind == tsparse.KindFunctionParam && catchParamRE.MatchString(window),
		defaultConfigRE.MatchString(ctx.Line),
		pluginSigRE.MatchString(ctx.Line):
		return Proposal{Skip: true}, true
	}
	return Proposal{}, false
}

// matchVocabulary consults the project's configured keyword→type table
// against the site identifier. Keys are tried in sorted order so that a
// multi-key hit resolves the same way on every run.
func matchVocabulary(ctx Context) (Proposal, bool) {
	name := strings.ToLower(ctx.Site.Name)
	if name == "" {
		return Proposal{}, false
	}
	for _, keyword := range slices.Sorted(maps.Keys(ctx.Vocabulary)) {
		if strings.Contains(name, strings.ToLower(keyword)) {
			return Proposal{NewType: ctx.Vocabulary[keyword]}, true
		}
	}
	return Proposal{}, false
}

// matchArrayUsage fires only when the site's own identifier is used
// like an array; `.map` on some other name in the window proves nothing.
func matchArrayUsage(ctx Context) (Proposal, bool) {
	name := ctx.Site.Name
	if name == "" {
		return Proposal{}, false
	}
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `\.(?:map|filter|forEach|reduce|length|push|slice)\b`)
	if re.MatchString(ctx.windowText()) {
		return Proposal{NewType: "unknown[]"}, true
	}
	return Proposal{}, false
}

func matchPromiseUsage(ctx Context) (Proposal, bool) {
	name := ctx.Site.Name
	window := ctx.windowText()
	if name != "" {
		awaitRE := regexp.MustCompile(`\bawait\s+` + regexp.QuoteMeta(name) + `\b`)
		thenRE := regexp.MustCompile(regexp.QuoteMeta(name) + `\.then\s*\(`)
		if awaitRE.MatchString(window) || thenRE.MatchString(window) {
			return Proposal{NewType: "Promise<unknown>"}, true
		}
	}
	if ctx.Site.Kind == tsparse.KindFunctionReturn &&
		(strings.Contains(ctx.Line, "async ") || strings.Contains(window, "await ")) {
		return Proposal{NewType: "Promise<unknown>"}, true
	}
	return Proposal{}, false
}

var recordCueRE = regexp.MustCompile(`\b(?:JSON\.parse|fetch\s*\(|\.json\s*\(\)|response|payload)\b`)

func matchRecordUsage(ctx Context) (Proposal, bool) {
	if recordCueRE.MatchString(ctx.windowText()) {
		return Proposal{NewType: "Record<string, unknown>"}, true
	}
	return Proposal{}, false
}

func matchEventHandler(ctx Context) (Proposal, bool) {
	name := ctx.Site.Name
	line := ctx.Line
	switch {
	case strings.Contains(line, "onChange") || strings.HasPrefix(name, "onChange") || strings.Contains(name, "ChangeEvent"):
		return Proposal{NewType: "React.ChangeEvent<HTMLInputElement>"}, true
	case strings.Contains(line, "onClick") || strings.HasPrefix(name, "onClick"):
		return Proposal{NewType: "React.MouseEvent<HTMLElement>"}, true
	case strings.HasPrefix(name, "onSubmit"):
		return Proposal{NewType: "React.FormEvent<HTMLFormElement>"}, true
	}
	return Proposal{}, false
}

func matchCallbackShape(ctx Context) (Proposal, bool) {
	name := strings.ToLower(ctx.Site.Name)
	if strings.HasSuffix(name, "callback") || strings.HasSuffix(name, "handler") || name == "cb" || name == "fn" {
		return Proposal{NewType: "(...args: unknown[]) => unknown"}, true
	}
	if ctx.Site.Kind == tsparse.KindFunctionParam && ctx.Site.Name != "" {
		callRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(ctx.Site.Name) + `\s*\(`)
		if callRE.MatchString(ctx.windowText()) {
			// параметр вызывается как функция
			return Proposal{NewType: "(...args: unknown[]) => unknown"}, true
		}
	}
	return Proposal{}, false
}
