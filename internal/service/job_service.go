package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/dispatch"
	"github.com/example/jobdesk/backend/internal/models"
	"github.com/example/jobdesk/backend/internal/progress"
)

// JobStore is the persistence surface the service needs for jobs.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	FindByRef(ctx context.Context, jobRef string) (*models.Job, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// ReturnNoteStore persists return notes.
type ReturnNoteStore interface {
	Create(ctx context.Context, note *models.ReturnNote) error
}

// BillStore persists bills.
type BillStore interface {
	Create(ctx context.Context, bill *models.Bill) error
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// TransitionRequest carries one requested progress change from a form
// submission. It is consumed once and never persisted.
type TransitionRequest struct {
	JobRef            string
	RequestedProgress string
	Actor             string
	Remarks           string
}

// JobService contains the business logic for the job lifecycle: validating
// transitions against the state machine, committing them, and handing side
// effects to the dispatcher. Rule violations are detected before any write;
// side-effect failures happen after the commit and never roll it back.
type JobService struct {
	jobs       JobStore
	notes      ReturnNoteStore
	bills      BillStore
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

// NewJobService builds a service with dependencies.
func NewJobService(jobs JobStore, notes ReturnNoteStore, bills BillStore, dispatcher *dispatch.Dispatcher, log *zap.Logger) *JobService {
	return &JobService{
		jobs:       jobs,
		notes:      notes,
		bills:      bills,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// CreateJob allocates the job reference, fixes the initial state and persists
// the new job.
func (s *JobService) CreateJob(ctx context.Context, job *models.Job) error {
	now := s.now()
	from, to := weekWindow(now)
	seq, err := s.jobs.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return err
	}
	job.JobRef = jobRef(now, seq+1)
	job.Progress = progress.JustStarted
	if err := s.jobs.Create(ctx, job); err != nil {
		return err
	}
	s.dispatcher.JobCreated(ctx, job)
	return nil
}

// SubmitTransition is the single entry point for all progress changes. It
// validates the request against the state machine, commits the new value plus
// any fields the transition fixes, then dispatches the emitted side effects.
func (s *JobService) SubmitTransition(ctx context.Context, req TransitionRequest) (*models.Job, error) {
	job, err := s.findJob(ctx, req.JobRef)
	if err != nil {
		return nil, err
	}

	requested, err := progress.Parse(req.RequestedProgress)
	if err != nil {
		return nil, err
	}

	res, err := progress.Check(job.Progress, requested)
	if err != nil {
		return nil, err
	}
	if res.Identity {
		return job, nil
	}

	from := job.Progress
	job.Progress = res.Next
	if req.Remarks != "" {
		job.Remarks = req.Remarks
	}
	for _, in := range res.Intents {
		if in.Kind == progress.IntentSetCompletedDate && job.CompletedDate == nil {
			t := s.now()
			job.CompletedDate = &t
		}
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info("job transitioned",
		zap.String("jobRef", job.JobRef),
		zap.String("from", string(from)),
		zap.String("to", string(job.Progress)),
		zap.String("actor", req.Actor))

	s.dispatcher.JobTransitioned(ctx, job, from)
	s.dispatcher.Dispatch(ctx, job, res.Intents)
	return job, nil
}

// AssignTechnician sets or reassigns the job's technician. Reassignment
// overwrites; closed jobs reject the edit.
func (s *JobService) AssignTechnician(ctx context.Context, jobRef, technician string) (*models.Job, error) {
	job, err := s.findJob(ctx, jobRef)
	if err != nil {
		return nil, err
	}
	if job.Progress.IsFrozen() {
		return nil, &progress.TransitionError{
			Kind:    progress.KindInvalidTransition,
			Message: "job is closed; no further edits permitted",
		}
	}
	job.Technician = technician
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CanBill reports whether the billing action may run for this job.
func (s *JobService) CanBill(job *models.Job) bool {
	return progress.CanBill(job.Progress)
}

// CreateBill records the invoice for a completed job and closes the job under
// the composite billed state. This is the only producer of that state.
func (s *JobService) CreateBill(ctx context.Context, jobRef string, amount float64, createdBy string) (*models.Bill, error) {
	job, err := s.findJob(ctx, jobRef)
	if err != nil {
		return nil, err
	}
	if err := progress.CheckBill(job.Progress); err != nil {
		return nil, err
	}

	now := s.now()
	from, to := weekWindow(now)
	seq, err := s.bills.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	bill := &models.Bill{
		BillRef:   billRef(now, seq+1),
		JobRef:    job.JobRef,
		Amount:    amount,
		CreatedBy: createdBy,
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, err
	}

	prior := job.Progress
	job.Progress = progress.ClosedByBill(bill.BillRef)
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info("job billed",
		zap.String("jobRef", job.JobRef),
		zap.String("billRef", bill.BillRef),
		zap.String("from", string(prior)))

	s.dispatcher.JobBilled(ctx, job, bill)
	return bill, nil
}

// IssueReturnNote issues the one-time return note for a returned & closed
// job, flips job_return_note and dispatches the document generation.
func (s *JobService) IssueReturnNote(ctx context.Context, jobRef, createdBy string) (*models.ReturnNote, error) {
	job, err := s.findJob(ctx, jobRef)
	if err != nil {
		return nil, err
	}
	if err := progress.CheckReturnNote(job.Progress, job.ReturnNote); err != nil {
		return nil, err
	}

	note := &models.ReturnNote{
		JobRef:     job.JobRef,
		CreatedBy:  createdBy,
		IssuedDate: s.now(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	job.ReturnNote = models.ReturnNoteIssued
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.dispatcher.ReturnNoteIssued(ctx, job, note)
	return note, nil
}

func (s *JobService) findJob(ctx context.Context, jobRef string) (*models.Job, error) {
	job, err := s.jobs.FindByRef(ctx, jobRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, progress.NotFound(jobRef)
		}
		return nil, err
	}
	return job, nil
}
