package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// FlowSource loads a flow document.
type FlowSource interface {
	Load(ctx context.Context) (domain.Graph, error)
}

// Watchable is implemented by sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying document
	// changes. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
