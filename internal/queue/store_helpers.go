package queue

import (
	"database/sql"
	"strings"
	"time"
)

const jobColumns = "id, token, source_path, work_dir, status, segment_count, segments_done, progress_stage, progress_message, error_message, result_json, created_at, updated_at, last_heartbeat"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           int64
		token        string
		sourcePath   sql.NullString
		workDir      sql.NullString
		statusStr    string
		segmentCount sql.NullInt64
		segmentsDone sql.NullInt64
		stage        sql.NullString
		message      sql.NullString
		errorMessage sql.NullString
		resultJSON   sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		heartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&token,
		&sourcePath,
		&workDir,
		&statusStr,
		&segmentCount,
		&segmentsDone,
		&stage,
		&message,
		&errorMessage,
		&resultJSON,
		&createdRaw,
		&updatedRaw,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		Token:           token,
		SourcePath:      sourcePath.String,
		WorkDir:         workDir.String,
		Status:          Status(statusStr),
		SegmentCount:    int(segmentCount.Int64),
		SegmentsDone:    int(segmentsDone.Int64),
		ProgressStage:   stage.String,
		ProgressMessage: message.String,
		ErrorMessage:    errorMessage.String,
		ResultJSON:      resultJSON.String,
	}
	job.CreatedAt = parseTime(createdRaw)
	job.UpdatedAt = parseTime(updatedRaw)
	if heartbeatRaw.Valid && strings.TrimSpace(heartbeatRaw.String) != "" {
		hb := parseTime(heartbeatRaw)
		job.LastHeartbeat = &hb
	}
	return job, nil
}

func parseTime(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
