/*
Package observability provides tools for monitoring the chatflow editor.

It turns editor lifecycle hooks into Prometheus metrics and structured audit
logs. Both are plain domain.Hooks values, so they can be merged and passed to
chatflow.WithHooks.
*/
package observability
