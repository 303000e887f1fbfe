package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill records the invoice that closed a completed job.
type Bill struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BillRef   string    `gorm:"uniqueIndex" json:"billRef"`
	JobRef    string    `gorm:"index" json:"jobRef"`
	Amount    float64   `json:"amount"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate populates the primary key.
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
