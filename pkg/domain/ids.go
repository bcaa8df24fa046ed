package domain

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator mints node identifiers. Implementations must never return
// the same id twice.
type IDGenerator interface {
	NextID() string
}

// DefaultNodeIDPrefix matches the ids minted by the canvas on drop.
const DefaultNodeIDPrefix = "dndnode_"

// CounterIDs mints prefix0, prefix1, ... from a counter it owns.
// Safe for concurrent use.
type CounterIDs struct {
	prefix string
	next   atomic.Uint64
}

// NewCounterIDs creates a counter generator starting at zero.
func NewCounterIDs(prefix string) *CounterIDs {
	return &CounterIDs{prefix: prefix}
}

// NextID returns the next id in sequence.
func (c *CounterIDs) NextID() string {
	n := c.next.Add(1) - 1
	return c.prefix + strconv.FormatUint(n, 10)
}

// UUIDIDs mints random UUIDv4 identifiers.
type UUIDIDs struct{}

// NextID returns a new random UUID string.
func (UUIDIDs) NextID() string {
	return uuid.NewString()
}
