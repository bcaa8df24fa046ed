/*
Package history provides linear undo/redo over full graph snapshots.

A Manager keeps two sequences of detached snapshots: Past, bounded to the
most recent entries (oldest evicted first), and Future, cleared by every
new record. Callers record the current graph immediately before applying
an undo-worthy mutation, so the top of Past is always the state that
preceded it.

Rapid incremental edits to one field are coalesced by the caller with a
Burst: only the first edit of a burst records, and a burst closes after a
quiet period with no edits.

Neither type is safe for concurrent use; the owner serializes access.
*/
package history
