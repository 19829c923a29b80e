// Package classify decides, for each located rewrite site, whether a
// safe replacement type exists and which one to propose.
package classify

// Band buckets a proposal's numeric score for display and gating.
type Band uint8

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	}
	return "low"
}

// Proposal is the outcome of classifying one site. When Skip is true no
// text mutation may occur for the site, and it is excluded from
// attempt statistics entirely.
type Proposal struct {
	NewType string
	Score   float64
	Reason  string
	Skip    bool
}

func (p Proposal) Band() Band {
	switch {
	case p.Score >= 0.8:
		return BandHigh
	case p.Score >= 0.5:
		return BandMedium
	}
	return BandLow
}
