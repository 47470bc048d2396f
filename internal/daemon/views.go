package daemon

import (
	"encoding/json"
	"time"

	"clipper/internal/queue"
)

type jobView struct {
	Token           string    `json:"token"`
	Status          string    `json:"status"`
	ProgressStage   string    `json:"progress_stage,omitempty"`
	ProgressMessage string    `json:"progress_message,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	SegmentCount    int       `json:"segment_count"`
	SegmentsDone    int       `json:"segments_done"`
	Segments        []string  `json:"segments,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newJobView(job *queue.Job) jobView {
	view := jobView{
		Token:           job.Token,
		Status:          string(job.Status),
		ProgressStage:   job.ProgressStage,
		ProgressMessage: job.ProgressMessage,
		ErrorMessage:    job.ErrorMessage,
		SegmentCount:    job.SegmentCount,
		SegmentsDone:    job.SegmentsDone,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
	if job.ResultJSON != "" {
		var result struct {
			Segments []string `json:"segments"`
		}
		if err := json.Unmarshal([]byte(job.ResultJSON), &result); err == nil {
			view.Segments = result.Segments
		}
	}
	return view
}

type jobListResponse struct {
	Jobs []jobView `json:"jobs"`
}

type jobResponse struct {
	Job jobView `json:"job"`
}

type jobAcceptedResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

type processResponse struct {
	Segments []string `json:"segments"`
}

type stageView struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

type queueView struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

type statusView struct {
	Running      bool        `json:"running"`
	Ready        bool        `json:"ready"`
	Stages       []stageView `json:"stages"`
	Queue        queueView   `json:"queue"`
	QueueDBPath  string      `json:"queue_db_path"`
	LockFilePath string      `json:"lock_file_path"`
}

func newStatusView(status Status) statusView {
	view := statusView{
		Running:      status.Running,
		Ready:        status.Workflow.Ready(),
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Queue: queueView{
			Total:      status.Workflow.Queue.Total,
			Pending:    status.Workflow.Queue.Pending,
			Processing: status.Workflow.Queue.Processing,
			Completed:  status.Workflow.Queue.Completed,
			Failed:     status.Workflow.Queue.Failed,
		},
	}
	for _, stg := range status.Workflow.Stages {
		view.Stages = append(view.Stages, stageView{
			Name:   stg.Name,
			Ready:  stg.Ready,
			Detail: stg.Detail,
		})
	}
	return view
}
