package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/models"
)

// ReturnNoteRepository provides persistence access for ReturnNote entities.
type ReturnNoteRepository struct {
	db *gorm.DB
}

// NewReturnNoteRepository constructs a repository using the provided gorm DB.
func NewReturnNoteRepository(db *gorm.DB) *ReturnNoteRepository {
	return &ReturnNoteRepository{db: db}
}

// Create persists the return note. The unique index on job_ref backs the
// once-per-job guarantee at the storage level.
func (r *ReturnNoteRepository) Create(ctx context.Context, note *models.ReturnNote) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(note).Error)
}

// FindByJobRef returns the note issued for a job, if any.
func (r *ReturnNoteRepository) FindByJobRef(ctx context.Context, jobRef string) (*models.ReturnNote, error) {
	var note models.ReturnNote
	if err := r.db.WithContext(ctx).First(&note, "job_ref = ?", jobRef).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &note, nil
}
