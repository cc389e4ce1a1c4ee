package model

import "time"

// RunStatus 批次状态
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusDone       RunStatus = "done"
	RunStatusFailed     RunStatus = "failed"
)

// Run 一次批处理的运行记录
type Run struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	Status       RunStatus  `json:"status"`
	TotalRecords int        `json:"totalRecords"`
	ValidRecords int        `json:"validRecords"`
	ManualChecks int        `json:"manualChecks"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
