package diag

// Severity ranks a diagnostic. Info and warnings never fail an analysis
// run; errors do, and the driver's exit code reflects them.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// String spells the severity the way the pretty and golden formatters
// print it.
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
