// Package queue persists pipeline jobs in SQLite. Each uploaded video is one
// job whose status walks the pipeline lifecycle; the workflow manager claims
// jobs by status and stages report progress back through the store.
package queue
