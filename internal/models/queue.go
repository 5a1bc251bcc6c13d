package models

import "time"

// ProcessResult summarizes one queue processing run.
type ProcessResult struct {
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	PendingCount int           `json:"pending_count"`
	FailedIDs    []string      `json:"failed_ids,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// QueueStatus is a derived snapshot of queue state for display.
type QueueStatus struct {
	Total         int   `json:"total"`
	Pending       int   `json:"pending"`
	Processing    int   `json:"processing"`
	Failed        int   `json:"failed"`
	Success       int   `json:"success"`
	IsProcessing  bool  `json:"is_processing"`
	LastProcessed int64 `json:"last_processed,omitempty"` // unix milliseconds
}
