// Package workflow coordinates queue processing. The manager claims jobs by
// status, runs the matching stage handler with a heartbeat, and persists the
// resulting transition. Jobs whose heartbeat goes stale are reclaimed and
// failed so a crashed run never wedges the queue.
package workflow
