package domain

// Verdict is the outcome of save validation.
type Verdict string

const (
	VerdictOK                     Verdict = "ok"
	VerdictCycleDetected          Verdict = "cycle_detected"
	VerdictMultipleDanglingStarts Verdict = "multiple_dangling_starts"
)

// OK reports whether the verdict allows the save.
func (v Verdict) OK() bool {
	return v == VerdictOK
}

// Message is the user-facing text shown for the verdict.
func (v Verdict) Message() string {
	switch v {
	case VerdictOK:
		return "Flow saved successfully"
	case VerdictCycleDetected:
		return "Cannot save flow: Infinite loop detected."
	case VerdictMultipleDanglingStarts:
		return "Cannot save Flow"
	default:
		return string(v)
	}
}

// Err maps a failing verdict to its sentinel error. It returns nil for
// VerdictOK.
func (v Verdict) Err() error {
	switch v {
	case VerdictCycleDetected:
		return ErrCycleDetected
	case VerdictMultipleDanglingStarts:
		return ErrMultipleDanglingStarts
	default:
		return nil
	}
}
