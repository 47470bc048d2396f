package queue

import (
	"context"
	"fmt"
	"time"
)

// UpdateHeartbeat stamps a processing job as alive.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing fails jobs stuck in a processing status whose
// heartbeat predates the cutoff, typically after a daemon crash. It returns
// the number of jobs reclaimed.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	args := make([]any, 0, len(ProcessingStatuses)+3)
	args = append(args,
		StatusFailed,
		"processing heartbeat expired; reclaimed after restart",
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	for _, status := range ProcessingStatuses {
		args = append(args, status)
	}
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, updated_at = ?, last_heartbeat = NULL
         WHERE status IN (`+makePlaceholders(len(ProcessingStatuses))+`)
           AND (last_heartbeat IS NULL OR last_heartbeat < ?)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}
