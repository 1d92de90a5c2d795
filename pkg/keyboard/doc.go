// Package keyboard maps scan positions to keys and turns commits into
// composed text.
//
// A [Layout] is an explicit table from grid position to [Key]. The
// [Composer] implements scan.CommitSink: character keys append to the
// buffer, DELETE removes the last character, SPACE appends a space, SEND
// hands the buffer to every registered message sink and clears it, and EXIT
// must be committed twice in a row before the exit callback runs.
//
// Layouts can be loaded from YAML:
//
//	name: qwerty
//	rows:
//	  - [Q, W, E, R, T, Y, U, I]
//	  - [O, P, A, S, D, F, G, H]
//	  - [7, 8, 9, 0, DELETE, SPACE, SEND, EXIT]
package keyboard
