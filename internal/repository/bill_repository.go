package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/models"
)

// BillRepository provides persistence access for Bill entities.
type BillRepository struct {
	db *gorm.DB
}

// NewBillRepository constructs a repository using the provided gorm DB.
func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Create persists the bill.
func (r *BillRepository) Create(ctx context.Context, bill *models.Bill) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(bill).Error)
}

// ListByJobRef returns bills recorded against a job, newest first.
func (r *BillRepository) ListByJobRef(ctx context.Context, jobRef string) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.WithContext(ctx).
		Where("job_ref = ?", jobRef).
		Order("created_at desc").
		Find(&bills).Error
	return bills, errors.WithStack(err)
}

// CountCreatedBetween counts bills created in [from, to), used to allocate
// the weekly bill reference sequence.
func (r *BillRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, errors.WithStack(err)
}
