// Package executor runs a resolved plan. It owns every target's state for
// the duration of one run: no target mutates another target's state, only the
// engine transitions them.
//
// Per target the engine applies, in order:
//
//  1. Skip when a hard dependency failed (directly or transitively).
//  2. Evaluate the guard lazily, after dependencies have executed, so a guard
//     may read values those dependencies produced. A false clause skips.
//  3. Run the action. Errors, panics and cancellation fail the target. Unless
//     the engine continues on failure, every target not yet visited is skipped.
//  4. Check declared outputs. A pattern with no match fails the target even
//     though its action returned normally.
//
// Side effects are never rolled back.
package executor
