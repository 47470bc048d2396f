package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

type daemonStatus struct {
	Running bool `json:"running"`
	Ready   bool `json:"ready"`
	Stages  []struct {
		Name   string `json:"name"`
		Ready  bool   `json:"ready"`
		Detail string `json:"detail"`
	} `json:"stages"`
	Queue struct {
		Total      int `json:"total"`
		Pending    int `json:"pending"`
		Processing int `json:"processing"`
		Completed  int `json:"completed"`
		Failed     int `json:"failed"`
	} `json:"queue"`
	QueueDBPath  string `json:"queue_db_path"`
	LockFilePath string `json:"lock_file_path"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + cfg.Paths.APIBind + "/api/status")
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not reachable; start it with `clipperd`", colorize))
				return nil
			}
			defer resp.Body.Close()

			var status daemonStatus
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			runningKind := statusError
			runningMsg := "stopped"
			if status.Running {
				runningKind = statusOK
				runningMsg = "running"
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningMsg, colorize))
			fmt.Fprintln(out, renderStatusLine("Queue database", statusInfo, status.QueueDBPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			for _, line := range renderSectionHeader("Stages", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, stg := range status.Stages {
				kind := statusOK
				message := "ready"
				if !stg.Ready {
					kind = statusError
					message = stg.Detail
				}
				fmt.Fprintln(out, renderStatusLine(stg.Name, kind, message, colorize))
			}

			for _, line := range renderSectionHeader("Queue", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Pending", statusInfo, fmt.Sprint(status.Queue.Pending), colorize))
			fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, fmt.Sprint(status.Queue.Processing), colorize))
			fmt.Fprintln(out, renderStatusLine("Completed", statusOK, fmt.Sprint(status.Queue.Completed), colorize))
			failedKind := statusOK
			if status.Queue.Failed > 0 {
				failedKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprint(status.Queue.Failed), colorize))
			return nil
		},
	}
}
