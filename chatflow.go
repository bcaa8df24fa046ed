package chatflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/graph"
	"github.com/aretw0/chatflow/pkg/history"
	"github.com/aretw0/chatflow/pkg/suggest"
	"github.com/aretw0/chatflow/pkg/validation"
)

// Editor is the high-level entry point of the library. It owns one flow
// graph together with its undo/redo history and applies every edit through
// the connection gate and the history recorder.
//
// An Editor is safe for concurrent use; edits are serialized.
type Editor struct {
	mu sync.Mutex

	graph  domain.Graph
	hist   *history.Manager
	burst  *history.Burst
	policy graph.Policy
	rules  *validation.Engine

	ids       domain.IDGenerator
	suggester suggest.Provider
	hooks     domain.Hooks
	logger    *slog.Logger
	now       func() time.Time

	historyLimit int
	burstWindow  time.Duration
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks. Repeated calls are merged.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithIDGenerator replaces the default "dndnode_N" counter.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(e *Editor) {
		e.ids = ids
	}
}

// WithSuggester sets the provider used by Suggest.
func WithSuggester(p suggest.Provider) Option {
	return func(e *Editor) {
		e.suggester = p
	}
}

// WithHistoryLimit bounds the undo stack (default: 50).
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		e.historyLimit = n
	}
}

// WithBurstWindow sets the quiet period that separates two text edit bursts.
func WithBurstWindow(d time.Duration) Option {
	return func(e *Editor) {
		e.burstWindow = d
	}
}

// WithClock injects the time source used for burst detection and events.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithPolicy sets the connection policy.
func WithPolicy(p graph.Policy) Option {
	return func(e *Editor) {
		e.policy = p
	}
}

// WithRules replaces the save rules.
func WithRules(rules *validation.Engine) Option {
	return func(e *Editor) {
		e.rules = rules
	}
}

// WithGraph seeds the editor with an existing flow. The seed is not an
// undoable step.
func WithGraph(g domain.Graph) Option {
	return func(e *Editor) {
		e.graph = g.Clone()
	}
}

// New initializes an Editor with an empty flow.
func New(opts ...Option) *Editor {
	e := &Editor{
		graph:  domain.NewGraph(),
		policy: graph.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.ids == nil {
		e.ids = domain.NewCounterIDs(domain.DefaultNodeIDPrefix)
	}
	if e.suggester == nil {
		e.suggester = suggest.NewMock(suggest.DefaultMockDelay)
	}
	if e.rules == nil {
		e.rules = validation.Default()
	}

	var histOpts []history.Option
	if e.historyLimit > 0 {
		histOpts = append(histOpts, history.WithLimit(e.historyLimit))
	}
	e.hist = history.New(histOpts...)
	e.burst = history.NewBurst(e.burstWindow, e.now)

	return e
}

// Graph returns a detached copy of the current flow.
func (e *Editor) Graph() domain.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Node returns the node with the given id.
func (e *Editor) Node(id string) (domain.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.graph.Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// AddNode drops a new node of type t at pos.
func (e *Editor) AddNode(t domain.NodeType, pos domain.Position) (domain.Node, error) {
	if !t.Valid() {
		return domain.Node{}, fmt.Errorf("%w: %q", domain.ErrInvalidNodeType, t)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.ids.NextID()
	for e.graph.HasNode(id) {
		// Seeded or replaced flows may already use generated ids.
		id = e.ids.NextID()
	}
	n := domain.NewNode(id, t, pos)
	e.burst.Reset()
	e.record("add_node")
	e.graph.Nodes = append(e.graph.Nodes, n)
	e.logger.Debug("Node added", "node_id", n.ID, "type", n.Type)
	return n, nil
}

// MoveNode changes the canvas position of a node. Moves are not undoable.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	e.graph.Nodes[i].Position = pos
	return nil
}

// CanConnect reports whether conn would be accepted right now. It is the
// same predicate Connect applies, and stricter than graph.CanConnect: empty
// or unknown endpoints are refused too.
func (e *Editor) CanConnect(conn domain.Connection) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allows(conn)
}

// Connect commits conn. A rejected connection leaves the flow and its
// history untouched.
func (e *Editor) Connect(conn domain.Connection) (domain.Edge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	accepted := e.allows(conn)
	if e.hooks.OnConnect != nil {
		e.hooks.OnConnect(&domain.ConnectEvent{
			EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventConnect},
			Connection: conn,
			Accepted:   accepted,
		})
	}
	if !accepted {
		e.logger.Debug("Connection rejected", "source", conn.Source, "target", conn.Target)
		return domain.Edge{}, false
	}

	e.burst.Reset()
	e.record("connect")
	edges, _ := e.policy.Connect(conn, e.graph.Edges)
	e.graph.Edges = edges
	return edges[len(edges)-1], true
}

// DeleteNodes removes the given nodes and every edge touching them as one
// undoable step. Unknown ids are ignored.
func (e *Editor) DeleteNodes(ids ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if e.graph.HasNode(id) {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	e.burst.Reset()
	e.record("delete_nodes")
	e.graph.Nodes = slices.DeleteFunc(e.graph.Nodes, func(n domain.Node) bool {
		_, gone := doomed[n.ID]
		return gone
	})
	e.graph.Edges = slices.DeleteFunc(e.graph.Edges, func(ed domain.Edge) bool {
		_, src := doomed[ed.Source]
		_, tgt := doomed[ed.Target]
		return src || tgt
	})
	return len(doomed)
}

// DeleteEdges removes the given edges as one undoable step and returns how
// many edges were removed. Unknown ids are ignored.
func (e *Editor) DeleteEdges(ids ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	doomed := make(map[string]struct{}, len(ids))
	for _, ed := range e.graph.Edges {
		if slices.Contains(ids, ed.ID) {
			doomed[ed.ID] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	e.burst.Reset()
	e.record("delete_edges")
	before := len(e.graph.Edges)
	e.graph.Edges = slices.DeleteFunc(e.graph.Edges, func(ed domain.Edge) bool {
		_, gone := doomed[ed.ID]
		return gone
	})
	return before - len(e.graph.Edges)
}

// UpdateText sets the label of a text node. Consecutive edits of the same
// node within the burst window share one undo step.
func (e *Editor) UpdateText(id, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if e.graph.Nodes[i].Type != domain.NodeTypeText {
		return fmt.Errorf("%w: %s", domain.ErrNotTextNode, id)
	}
	if e.graph.Nodes[i].Data.Label == label {
		return nil
	}

	if e.burst.Begin(id + "/label") {
		e.record("update_text")
	}
	e.graph.Nodes[i].Data.Label = label
	return nil
}

// UpdateImageURL sets the image of an image node, unwrapping image-search
// result links. Edits are coalesced like UpdateText.
func (e *Editor) UpdateImageURL(id, rawURL string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if e.graph.Nodes[i].Type != domain.NodeTypeImage {
		return fmt.Errorf("%w: %s", domain.ErrNotImageNode, id)
	}
	u := NormalizeImageURL(rawURL)
	if e.graph.Nodes[i].Data.ImageURL == u {
		return nil
	}

	if e.burst.Begin(id + "/imageUrl") {
		e.record("update_image_url")
	}
	e.graph.Nodes[i].Data.ImageURL = u
	return nil
}

// Suggest asks the provider for a reply to the parent of a text node and
// writes it as the node's label. The provider is awaited without holding
// the editor lock; history is recorded only once the suggestion arrives.
func (e *Editor) Suggest(ctx context.Context, id string) (string, error) {
	e.mu.Lock()
	n, ok := e.graph.Node(id)
	if !ok {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if n.Type != domain.NodeTypeText {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %s", domain.ErrNotTextNode, id)
	}
	var parent *string
	if text, found := graph.ParentText(id, e.graph.Nodes, e.graph.Edges); found {
		parent = &text
	}
	e.mu.Unlock()

	start := e.now()
	text, err := e.suggester.Suggest(ctx, parent)
	if e.hooks.OnSuggest != nil {
		e.hooks.OnSuggest(&domain.SuggestEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventSuggest},
			NodeID:    id,
			Duration:  e.now().Sub(start),
			IsError:   err != nil,
		})
	}
	if err != nil {
		e.logger.Warn("Suggestion failed", "node_id", id, "error", err)
		return "", fmt.Errorf("suggest for %s: %w", id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The node may have been removed while the provider was working.
	i := e.indexOf(id)
	if i < 0 || e.graph.Nodes[i].Type != domain.NodeTypeText {
		return "", fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	e.burst.Reset()
	e.record("suggest")
	e.graph.Nodes[i].Data.Label = text
	return text, nil
}

// Undo restores the previous state. It returns false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.hist.Undo(e.graph)
	if !ok {
		return false
	}
	e.burst.Reset()
	e.graph = prev
	e.emitHistory(e.hooks.OnUndo, domain.EventUndo, "")
	return true
}

// Redo re-applies the most recently undone state. It returns false when
// there is nothing to redo.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := e.hist.Redo(e.graph)
	if !ok {
		return false
	}
	e.burst.Reset()
	e.graph = next
	e.emitHistory(e.hooks.OnRedo, domain.EventRedo, "")
	return true
}

// CanUndo reports whether Undo would change the flow.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanUndo()
}

// CanRedo reports whether Redo would change the flow.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanRedo()
}

// Validate evaluates the save rules without emitting a save event.
func (e *Editor) Validate() validation.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Evaluate(e.graph)
}

// Save evaluates the save rules. The returned error is a
// *validation.ViolationError when the flow may not be saved. Save never
// modifies the flow.
func (e *Editor) Save() (validation.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := e.rules.Evaluate(e.graph)
	if e.hooks.OnSave != nil {
		e.hooks.OnSave(&domain.SaveEvent{
			EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventSave},
			Verdict:    report.Verdict,
			Offenders:  report.Offenders,
			NodesCount: len(e.graph.Nodes),
			EdgesCount: len(e.graph.Edges),
		})
	}
	if err := report.Err(); err != nil {
		e.logger.Info("Save rejected", "verdict", report.Verdict, "rule", report.Rule, "offenders", report.Offenders)
		return report, err
	}
	e.logger.Info("Save accepted", "nodes", len(e.graph.Nodes), "edges", len(e.graph.Edges))
	return report, nil
}

// Replace loads g as the current flow in one undoable step.
func (e *Editor) Replace(g domain.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.burst.Reset()
	e.record("replace")
	e.graph = g.Clone()
}

// History returns the number of undo and redo steps available.
func (e *Editor) History() (past, future int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Len()
}

// record snapshots the current flow. Callers hold e.mu.
func (e *Editor) record(reason string) {
	e.hist.Record(e.graph)
	e.emitHistory(e.hooks.OnRecord, domain.EventRecord, reason)
}

func (e *Editor) emitHistory(hook func(*domain.HistoryEvent), t domain.EventType, reason string) {
	if hook == nil {
		return
	}
	past, future := e.hist.Len()
	hook(&domain.HistoryEvent{
		EventBase:  domain.EventBase{Timestamp: e.now(), Type: t},
		Reason:     reason,
		PastLen:    past,
		FutureLen:  future,
		NodesCount: len(e.graph.Nodes),
	})
}

func (e *Editor) allows(conn domain.Connection) bool {
	if !e.graph.HasNode(conn.Source) || !e.graph.HasNode(conn.Target) {
		return false
	}
	return e.policy.Allows(conn, e.graph.Edges)
}

func (e *Editor) indexOf(id string) int {
	return slices.IndexFunc(e.graph.Nodes, func(n domain.Node) bool { return n.ID == id })
}
