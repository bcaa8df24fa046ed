/*
Package session implements the lifecycle of editing sessions.

A session is one Editor, with its undo history, kept in a SessionStore under
an ID. The Manager creates and closes sessions with per-ID locking so that
two clients racing to open the same ID cannot both succeed.
*/
package session
