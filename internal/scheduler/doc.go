// Package scheduler decides which targets of a plan may start next.
//
// # Why Scheduler Exists
//
// The executor's serial mode simply walks the plan. The parallel mode needs to
// know, at any moment, which pending targets have every hard dependency and
// every accepted soft predecessor in a terminal state. Keeping that decision
// here separates "what can run" from "how to run it".
//
// A target is ready once its predecessors are terminal, not necessarily
// successful: the executor still inspects the outcomes and turns a target
// whose dependency failed into a skip.
package scheduler
