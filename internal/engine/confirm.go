package engine

// Decision is the operator's answer to one proposed change.
type Decision uint8

const (
	DecisionNo Decision = iota
	DecisionYes
	DecisionAll  // apply this and everything after without asking
	DecisionQuit // stop the run, keep what was already accepted
)

// Change describes one proposed substitution for confirmation.
// Col is 0 for degraded-mode sites, where only the line is known.
type Change struct {
	Path    string
	Line    uint32
	Col     uint32
	OldLine string
	NewLine string
	NewType string
	Reason  string
	Band    string
}

// Confirmer gates proposals in interactive mode. Implementations block
// on terminal input; the run is serialized on the human either way.
type Confirmer interface {
	Confirm(change Change) (Decision, error)
}

// autoConfirmer implements --auto-fix: only high-confidence proposals
// pass, everything else is declined without prompting.
type autoConfirmer struct{}

func (autoConfirmer) Confirm(change Change) (Decision, error) {
	if change.Band == "high" {
		return DecisionYes, nil
	}
	return DecisionNo, nil
}

// acceptAll is used after an interactive DecisionAll and in dry-run
// accounting, where every non-skipped proposal counts.
type acceptAll struct{}

func (acceptAll) Confirm(Change) (Decision, error) {
	return DecisionYes, nil
}
