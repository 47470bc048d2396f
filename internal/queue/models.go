package queue

import "time"

// Status represents the lifecycle of a pipeline job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSplitting    Status = "splitting"
	StatusSplit        Status = "split"
	StatusTranscribing Status = "transcribing"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSplitting,
	StatusSplit,
	StatusTranscribing,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ProcessingStatuses are the statuses a stage holds while it works; jobs
// stuck in one of them past the heartbeat timeout are reclaimable.
var ProcessingStatuses = []Status{StatusSplitting, StatusTranscribing, StatusRendering}

// IsValid reports whether the status is one the schema knows.
func (s Status) IsValid() bool {
	_, ok := statusSet[s]
	return ok
}

// IsTerminal reports whether no further processing will happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one uploaded video and its pipeline state.
type Job struct {
	ID              int64
	Token           string
	SourcePath      string
	WorkDir         string
	Status          Status
	SegmentCount    int
	SegmentsDone    int
	ProgressStage   string
	ProgressMessage string
	ErrorMessage    string
	ResultJSON      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastHeartbeat   *time.Time
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
