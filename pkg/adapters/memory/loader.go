package memory

import (
	"context"
	"sync"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// Source implements ports.FlowSource and ports.Watchable over a graph held
// in memory. Set replaces the graph and notifies watchers, which makes it
// a stand-in for a flow file in tests and embedded use.
type Source struct {
	mu       sync.Mutex
	graph    domain.Graph
	watchers []chan struct{}
}

var (
	_ ports.FlowSource = (*Source)(nil)
	_ ports.Watchable  = (*Source)(nil)
)

// NewSource creates a source serving a copy of g.
func NewSource(g domain.Graph) *Source {
	return &Source{graph: g.Clone()}
}

// NewFromNodes creates a source from nodes and edges.
func NewFromNodes(nodes []domain.Node, edges ...domain.Edge) *Source {
	return NewSource(domain.Graph{Nodes: nodes, Edges: edges})
}

// Load returns a detached copy of the current graph.
func (s *Source) Load(ctx context.Context) (domain.Graph, error) {
	if err := ctx.Err(); err != nil {
		return domain.Graph{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone(), nil
}

// Set replaces the graph and signals every watcher. A watcher that has not
// consumed the previous signal yet is not signaled twice.
func (s *Source) Set(g domain.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch returns a channel signaled on every Set until ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
