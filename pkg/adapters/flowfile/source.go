package flowfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Source implements ports.FlowSource and ports.Watchable for a file.
type Source struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

var (
	_ ports.FlowSource = (*Source)(nil)
	_ ports.Watchable  = (*Source)(nil)
)

// Option configures a Source.
type Option func(*Source)

// WithDebounce sets the quiet period before a change is signaled.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		s.debounce = d
	}
}

// WithLogger sets the logger used for watcher errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a source for the document at path.
func NewSource(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *Source) Path() string { return s.path }

// Load reads and decodes the document.
func (s *Source) Load(ctx context.Context) (domain.Graph, error) {
	if err := ctx.Err(); err != nil {
		return domain.Graph{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("failed to read flow: %w", err)
	}
	g, err := Decode(data)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return g, nil
}

// Save encodes g in the format implied by the file extension.
func (s *Source) Save(g domain.Graph) error {
	data, err := Encode(g, FormatFor(s.path))
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Watch signals whenever the document is written, created or replaced.
// The parent directory is watched so atomic renames by editors are seen.
// The channel is closed when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan struct{}, 1)
	go s.watchLoop(ctx, w, abs, out)
	return out, nil
}

func (s *Source) watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, out chan<- struct{}) {
	defer close(out)
	defer w.Close()

	// Debounce timer to avoid multiple rapid reloads
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("Flow file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(s.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("File watcher error", "error", err)

		case <-timer.C:
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}
