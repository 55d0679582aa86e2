package models

import (
	"fmt"
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// PriceCheckTask represents an async price checking task
type PriceCheckTask struct {
	ID          string            `json:"id"`
	ProductID   int               `json:"product_id"`
	Status      TaskStatus        `json:"status"`
	Message     string            `json:"message"`
	Decision    *AlertDecision    `json:"decision,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewPriceCheckTask creates a new price check task
func NewPriceCheckTask(productID int) *PriceCheckTask {
	return &PriceCheckTask{
		ID:        generateTaskID(),
		ProductID: productID,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// Start marks the task as processing
func (t *PriceCheckTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Checking price..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with the detector's decision
func (t *PriceCheckTask) Complete(decision *AlertDecision) {
	t.Status = TaskStatusCompleted
	t.Message = "Price check completed"
	t.Decision = decision
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with an error message
func (t *PriceCheckTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Price check failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *PriceCheckTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running
func (t *PriceCheckTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been (or was) running
func (t *PriceCheckTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}
	return endTime.Sub(*t.StartedAt)
}

func generateTaskID() string {
	return fmt.Sprintf("task_%s_%06d", time.Now().Format("20060102150405"), rand.Intn(1000000))
}
