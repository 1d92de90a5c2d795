// Package domain contains the core domain entities and value objects for
// blinkscan that do not belong to a single public package.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (network, file system, logging) and
// contains only plain data and sentinel errors.
//
// # Entities
//
//   - [Message]: A composed text that was sent from the keyboard
//   - [Draft]: The in-progress composer buffer, persisted for crash recovery
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
