package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventConnect EventType = "connect"
	EventRecord  EventType = "record"
	EventUndo    EventType = "undo"
	EventRedo    EventType = "redo"
	EventSave    EventType = "save"
	EventSuggest EventType = "suggest"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ConnectEvent is emitted for every committed connection attempt.
type ConnectEvent struct {
	EventBase
	Connection Connection `json:"connection"`
	Accepted   bool       `json:"accepted"`
}

// HistoryEvent is emitted when a snapshot is recorded or history moves.
type HistoryEvent struct {
	EventBase
	Reason     string `json:"reason,omitempty"` // what triggered a record, e.g. "add_node"
	PastLen    int    `json:"past_len"`
	FutureLen  int    `json:"future_len"`
	NodesCount int    `json:"nodes_count"`
}

// SaveEvent is emitted after save validation ran.
type SaveEvent struct {
	EventBase
	Verdict    Verdict  `json:"verdict"`
	Offenders  []string `json:"offenders,omitempty"`
	NodesCount int      `json:"nodes_count"`
	EdgesCount int      `json:"edges_count"`
}

// SuggestEvent is emitted when a suggestion call returns.
type SuggestEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// Hooks defines callbacks for editor observability. Nil callbacks are skipped.
type Hooks struct {
	OnConnect func(*ConnectEvent)
	OnRecord  func(*HistoryEvent)
	OnUndo    func(*HistoryEvent)
	OnRedo    func(*HistoryEvent)
	OnSave    func(*SaveEvent)
	OnSuggest func(*SuggestEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnConnect: chain(h.OnConnect, other.OnConnect),
		OnRecord:  chain(h.OnRecord, other.OnRecord),
		OnUndo:    chain(h.OnUndo, other.OnUndo),
		OnRedo:    chain(h.OnRedo, other.OnRedo),
		OnSave:    chain(h.OnSave, other.OnSave),
		OnSuggest: chain(h.OnSuggest, other.OnSuggest),
	}
}

func chain[E any](a, b func(*E)) func(*E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}
