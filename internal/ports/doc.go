// Package ports defines the interfaces (ports) that connect the keyboard and
// service layers to infrastructure adapters.
//
// # Port Interfaces
//
//   - [DraftRepository]: Persists and loads the composer's draft
//   - [MessageSink]: Receives messages sent with the SEND key
//   - [HistoryRepository]: Stores sent messages and prunes old ones
//
// # Usage
//
// pkg/keyboard and pkg/blinkscan depend only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (JSON file, SQLite, terminal, WebSocket).
package ports
