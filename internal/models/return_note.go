package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnNote is the one-time record issued when a returned & closed job is
// handed back to the customer. At most one exists per job.
type ReturnNote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobRef     string    `gorm:"uniqueIndex" json:"jobRef"`
	CreatedBy  string    `json:"createdBy"`
	IssuedDate time.Time `json:"issuedDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BeforeCreate populates the primary key.
func (n *ReturnNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
