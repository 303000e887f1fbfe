package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/progress"
)

// ReturnNoteIssued is the only non-empty value job_return_note may hold.
const ReturnNoteIssued = "issued"

// Job represents a repair work order tracked from intake to closure.
type Job struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	JobRef        string            `gorm:"uniqueIndex" json:"jobRef"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Device        string            `json:"device"`
	SerialNumber  string            `json:"serialNumber"`
	Fault         string            `json:"fault"`
	Remarks       string            `json:"remarks"`
	Technician    string            `json:"technician"`
	CreatedBy     string            `json:"createdBy"`
	Progress      progress.Progress `gorm:"column:job_progress" json:"jobProgress"`
	CompletedDate *time.Time        `json:"completed_date,omitempty"`
	ReturnNote    string            `gorm:"column:job_return_note" json:"job_return_note"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key and the fixed
// initial lifecycle state.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Progress == "" {
		j.Progress = progress.JustStarted
	}
	return nil
}
