/*
Package ports defines the driven ports (interfaces) of the chatflow service.

These interfaces decouple the HTTP and MCP adapters from where editing
sessions live, so the same handlers can run against any session backend.

# Key Interfaces

  - SessionStore: Holds the live editors of open editing sessions.
  - FlowSource: Loads flow documents, optionally notifying about changes.
*/
package ports
