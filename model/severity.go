package model

// Severity is the level of a user facing notification
type Severity int

const (
	// SeverityInfo is a plain message
	SeverityInfo Severity = iota
	// SeveritySuccess reports something worked
	SeveritySuccess
	// SeverityFailure reports something failed
	SeverityFailure
)

// String returns the name of a severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityFailure:
		return "failure"
	}
	return "unknown"
}
