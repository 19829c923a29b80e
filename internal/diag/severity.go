package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps tool-emitted severity words to a Severity.
// Unknown words map to SevWarning, the safest middle ground.
func ParseSeverity(word string) Severity {
	switch word {
	case "error", "Error", "ERROR":
		return SevError
	case "warning", "Warning", "WARNING", "warn":
		return SevWarning
	case "info", "Info", "INFO", "note":
		return SevInfo
	}
	return SevWarning
}
