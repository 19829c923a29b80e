package tsparse

import (
	"regexp"
	"strings"
)

// Regex fallback for files the scanner cannot handle. Only simple,
// single-line patterns are recognized; multi-line and nested constructs
// are out of reach here, which is why degraded sites carry no offsets
// and force line-based editing.
var (
	degradedVarRE    = regexp.MustCompile(`^\s*(?:export\s+)?(?:let|const|var)\s+(\w+)\s*:\s*any\b`)
	degradedArrayRE  = regexp.MustCompile(`:\s*any\[\]`)
	degradedParamRE  = regexp.MustCompile(`[(,]\s*(\w+)\s*:\s*any\s*[,)]`)
	degradedReturnRE = regexp.MustCompile(`\)\s*:\s*any\s*[{;=]`)
	degradedPropRE   = regexp.MustCompile(`^\s*(\w+)\??\s*:\s*any\s*[;,]?\s*$`)
	degradedAsRE     = regexp.MustCompile(`\bas\s+any\b`)
)

// extractSitesDegraded scans line by line with the fallback patterns.
// First matching pattern per line wins; a line yields at most one site.
func extractSitesDegraded(src []byte) []Site {
	var sites []Site

	for idx, line := range strings.Split(string(src), "\n") {
		lineNum := uint32(idx + 1)
		site := Site{Line: lineNum, CharStart: -1, CharEnd: -1}

		switch {
		case degradedArrayRE.MatchString(line):
			site.Kind = KindArrayElement
		case degradedVarRE.MatchString(line):
			site.Kind = KindVariableDecl
			site.Name = degradedVarRE.FindStringSubmatch(line)[1]
		case degradedReturnRE.MatchString(line):
			site.Kind = KindFunctionReturn
		case degradedParamRE.MatchString(line):
			site.Kind = KindFunctionParam
			site.Name = degradedParamRE.FindStringSubmatch(line)[1]
		case degradedPropRE.MatchString(line):
			site.Kind = KindInterfaceProp
			site.Name = degradedPropRE.FindStringSubmatch(line)[1]
		case degradedAsRE.MatchString(line):
			site.Kind = KindTypeAssertion
		default:
			continue
		}

		sites = append(sites, site)
	}
	return sites
}
