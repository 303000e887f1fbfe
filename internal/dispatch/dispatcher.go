// Package dispatch turns side-effect intents emitted by committed job
// transitions into external calls. Each call is independent and best-effort:
// a failure is logged and surfaced nowhere else, because the transition it
// follows has already been committed and must stand.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/jobdesk/backend/internal/models"
	"github.com/example/jobdesk/backend/internal/mq"
	"github.com/example/jobdesk/backend/internal/progress"
)

// Routing keys on the job events exchange.
const (
	KeyJobCreated      = "job.created"
	KeyJobTransitioned = "job.transitioned"
	KeyJobNotify       = "job.notify"
	KeyJobReturnNote   = "job.return_note"
	KeyJobBilled       = "job.billed"
)

// Dispatcher publishes job events and executes transition side effects.
type Dispatcher struct {
	publisher mq.Publisher
	log       *zap.Logger
	now       func() time.Time
}

// New builds a dispatcher. publisher may be nil, in which case every call is
// a no-op (the service runs without a broker in local development).
func New(publisher mq.Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{publisher: publisher, log: log, now: time.Now}
}

// Dispatch executes the intents emitted by a committed transition, one
// external call per intent. Failures in one intent do not block the others.
func (d *Dispatcher) Dispatch(ctx context.Context, job *models.Job, intents []progress.Intent) {
	for _, in := range intents {
		switch in.Kind {
		case progress.IntentNotifyCustomer:
			d.NotifyCustomer(ctx, job, in.Template)
		case progress.IntentSetCompletedDate:
			// Stamped as part of the committed write; nothing to dispatch.
		}
	}
}

// JobCreated publishes the intake audit event.
func (d *Dispatcher) JobCreated(ctx context.Context, job *models.Job) {
	d.publish(ctx, KeyJobCreated, map[string]any{
		"event":      KeyJobCreated,
		"jobRef":     job.JobRef,
		"progress":   job.Progress,
		"technician": job.Technician,
		"createdBy":  job.CreatedBy,
		"occurredAt": d.now().UTC().Format(time.RFC3339),
	})
}

// JobTransitioned publishes the audit event for a committed progress change.
func (d *Dispatcher) JobTransitioned(ctx context.Context, job *models.Job, from progress.Progress) {
	d.publish(ctx, KeyJobTransitioned, map[string]any{
		"event":      KeyJobTransitioned,
		"jobRef":     job.JobRef,
		"from":       from,
		"to":         job.Progress,
		"technician": job.Technician,
		"occurredAt": d.now().UTC().Format(time.RFC3339),
	})
}

// NotifyCustomer asks the notification worker to message the customer using
// the given template.
func (d *Dispatcher) NotifyCustomer(ctx context.Context, job *models.Job, template string) {
	d.publish(ctx, KeyJobNotify, map[string]any{
		"event":      KeyJobNotify,
		"template":   template,
		"jobRef":     job.JobRef,
		"customer":   job.CustomerName,
		"phone":      job.CustomerPhone,
		"device":     job.Device,
		"occurredAt": d.now().UTC().Format(time.RFC3339),
	})
}

// ReturnNoteIssued asks the worker to generate the return-note document.
func (d *Dispatcher) ReturnNoteIssued(ctx context.Context, job *models.Job, note *models.ReturnNote) {
	d.publish(ctx, KeyJobReturnNote, map[string]any{
		"event":      KeyJobReturnNote,
		"jobRef":     job.JobRef,
		"noteId":     note.ID.String(),
		"customer":   job.CustomerName,
		"phone":      job.CustomerPhone,
		"device":     job.Device,
		"createdBy":  note.CreatedBy,
		"issuedDate": note.IssuedDate.UTC().Format(time.RFC3339),
	})
}

// JobBilled publishes the audit event for a job closed by a bill.
func (d *Dispatcher) JobBilled(ctx context.Context, job *models.Job, bill *models.Bill) {
	d.publish(ctx, KeyJobBilled, map[string]any{
		"event":      KeyJobBilled,
		"jobRef":     job.JobRef,
		"billRef":    bill.BillRef,
		"amount":     bill.Amount,
		"createdBy":  bill.CreatedBy,
		"occurredAt": d.now().UTC().Format(time.RFC3339),
	})
}

func (d *Dispatcher) publish(ctx context.Context, key string, payload map[string]any) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, key, payload); err != nil {
		d.log.Warn("side effect publish failed",
			zap.String("routingKey", key),
			zap.Any("jobRef", payload["jobRef"]),
			zap.Error(err))
	}
}
