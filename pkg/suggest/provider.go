package suggest

import "context"

// Provider drafts a reply. parent is the text of the parent node, or nil
// when the node has no text parent. Implementations must honour ctx.
type Provider interface {
	Suggest(ctx context.Context, parent *string) (string, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, parent *string) (string, error)

// Suggest calls f.
func (f ProviderFunc) Suggest(ctx context.Context, parent *string) (string, error) {
	return f(ctx, parent)
}
