package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultMockDelay is the simulated latency of the mock provider.
const DefaultMockDelay = 1500 * time.Millisecond

// Mock answers from keyword rules after a fixed delay.
type Mock struct {
	delay time.Duration
}

// NewMock creates a mock provider. A zero delay answers immediately.
func NewMock(delay time.Duration) *Mock {
	return &Mock{delay: delay}
}

// Suggest waits for the configured delay, or until ctx is done, and then
// returns a canned reply for parent.
func (m *Mock) Suggest(ctx context.Context, parent *string) (string, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}
	return Reply(parent), nil
}

// Reply is the keyword-based answer the mock gives for parent.
func Reply(parent *string) string {
	if parent == nil || strings.TrimSpace(*parent) == "" {
		return "Hi there! How can I help you today?"
	}

	lower := strings.ToLower(*parent)
	switch {
	case strings.Contains(lower, "order"):
		return "I can help with that! Please provide your order number."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! What brings you here today?"
	case strings.Contains(lower, "price") || strings.Contains(lower, "cost"):
		return "Our pricing depends on the specific plan. Would you like a breakdown?"
	}

	excerpt := []rune(*parent)
	if len(excerpt) > 20 {
		excerpt = excerpt[:20]
	}
	return fmt.Sprintf("That's interesting. Tell me more about \"%s...\"", string(excerpt))
}
