package validation

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ViolationError is the structural violation that rejects a save.
// It unwraps to domain.ErrCycleDetected or domain.ErrMultipleDanglingStarts.
type ViolationError struct {
	Rule      string         // Name of the failing rule
	Verdict   domain.Verdict // Verdict the rule produced
	Offenders []string       // Node ids that caused the failure
}

func (e *ViolationError) Error() string {
	reason := string(e.Verdict)
	if err := e.Verdict.Err(); err != nil {
		reason = err.Error()
	}
	msg := fmt.Sprintf("rule %q: %s", e.Rule, reason)
	if len(e.Offenders) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(e.Offenders, ", ") + ")"
}

func (e *ViolationError) Unwrap() error {
	return e.Verdict.Err()
}
