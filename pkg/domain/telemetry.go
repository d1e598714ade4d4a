package domain

import "time"

// LogEntry is one execution log line pushed by the external workflow runtime.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	NodeID    string         `json:"nodeId,omitempty"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// DataRow is one row of live data preview produced while a workflow runs.
type DataRow map[string]any
