// Package daemon ties the queue, workflow manager, and HTTP API together
// into the long-running clipperd process. A file lock under the log directory
// enforces single-instance execution.
package daemon
