package history

import "github.com/aretw0/chatflow/pkg/domain"

// DefaultLimit is the number of past snapshots kept by default.
const DefaultLimit = 50

// Manager maintains bounded past and unbounded future snapshot sequences.
type Manager struct {
	limit int
	past  []domain.Graph
	// future is stored reversed: its last element is the front of the
	// sequence, i.e. the next state Redo restores.
	future []domain.Graph
}

// Option configures the Manager.
type Option func(*Manager)

// WithLimit bounds the past sequence. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// New creates an empty history.
func New(opts ...Option) *Manager {
	m := &Manager{limit: DefaultLimit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record pushes a detached copy of current onto Past, evicts the oldest
// entry beyond the limit and clears Future. It must be called before the
// mutation it protects is applied.
func (m *Manager) Record(current domain.Graph) {
	m.past = append(m.past, current.Clone())
	if over := len(m.past) - m.limit; over > 0 {
		// Shift instead of reslicing so evicted snapshots can be collected.
		n := copy(m.past, m.past[over:])
		clear(m.past[n:])
		m.past = m.past[:n]
	}
	clear(m.future)
	m.future = m.future[:0]
}

// Undo pops the newest Past entry and returns it as the state to restore,
// pushing a copy of current onto the front of Future. It reports false and
// changes nothing when Past is empty.
func (m *Manager) Undo(current domain.Graph) (domain.Graph, bool) {
	if len(m.past) == 0 {
		return domain.Graph{}, false
	}
	prev := m.past[len(m.past)-1]
	m.past[len(m.past)-1] = domain.Graph{}
	m.past = m.past[:len(m.past)-1]

	m.future = append(m.future, current.Clone())
	return prev, true
}

// Redo pops the front of Future and returns it as the state to restore,
// pushing a copy of current onto Past. It reports false and changes nothing
// when Future is empty.
func (m *Manager) Redo(current domain.Graph) (domain.Graph, bool) {
	if len(m.future) == 0 {
		return domain.Graph{}, false
	}
	next := m.future[len(m.future)-1]
	m.future[len(m.future)-1] = domain.Graph{}
	m.future = m.future[:len(m.future)-1]

	// Redo never grows Past beyond what Undo removed, so no eviction here.
	m.past = append(m.past, current.Clone())
	return next, true
}

// CanUndo reports whether Past is non-empty.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether Future is non-empty.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Len returns the sizes of Past and Future.
func (m *Manager) Len() (past, future int) {
	return len(m.past), len(m.future)
}

// Limit returns the bound on Past.
func (m *Manager) Limit() int { return m.limit }

// Clear drops both sequences.
func (m *Manager) Clear() {
	m.past = nil
	m.future = nil
}
