package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/models"
)

// JobRepository provides persistence access for Job entities.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository constructs a repository using the provided gorm DB.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists the job instance.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(job).Error)
}

// Update persists the modified job.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(job).Error)
}

// FindByRef returns the job by its business reference.
func (r *JobRepository) FindByRef(ctx context.Context, jobRef string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "job_ref = ?", jobRef).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &job, nil
}

// List returns jobs ordered by creation time descending.
func (r *JobRepository) List(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []models.Job
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&jobs).Error
	return jobs, errors.WithStack(err)
}

// ListByTechnician returns the technician's jobs ordered by creation time
// descending.
func (r *JobRepository) ListByTechnician(ctx context.Context, technician string, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("technician = ?", technician).
		Order("created_at desc").
		Limit(limit).
		Find(&jobs).Error
	return jobs, errors.WithStack(err)
}

// CountCreatedBetween counts jobs created in [from, to), used to allocate the
// weekly reference sequence.
func (r *JobRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, errors.WithStack(err)
}
