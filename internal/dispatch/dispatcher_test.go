package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/jobdesk/backend/internal/models"
	"github.com/example/jobdesk/backend/internal/progress"
)

type recordedEvent struct {
	key     string
	payload map[string]any
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p.err != nil {
		return p.err
	}
	// round-trip through JSON the way the real publisher serializes
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return err
	}
	p.events = append(p.events, recordedEvent{key: routingKey, payload: decoded})
	return nil
}

func testJob() *models.Job {
	return &models.Job{
		ID:            uuid.New(),
		JobRef:        "IDSJBN-10-25-001",
		CustomerName:  "Nimal",
		CustomerPhone: "+94771234567",
		Device:        "Laptop",
		Technician:    "tech1",
		Progress:      progress.Completed,
	}
}

func TestDispatchNotifyCustomer(t *testing.T) {
	pub := &fakePublisher{}
	d := New(pub, zap.NewNop())

	d.Dispatch(context.Background(), testJob(), []progress.Intent{
		{Kind: progress.IntentSetCompletedDate},
		{Kind: progress.IntentNotifyCustomer, Template: progress.NotifyTemplateJobCompleted},
	})

	require.Len(t, pub.events, 1, "set-completed-date is not an external call")
	ev := pub.events[0]
	assert.Equal(t, KeyJobNotify, ev.key)
	assert.Equal(t, "job_completed", ev.payload["template"])
	assert.Equal(t, "IDSJBN-10-25-001", ev.payload["jobRef"])
	assert.Equal(t, "+94771234567", ev.payload["phone"])
}

func TestJobTransitionedPayload(t *testing.T) {
	pub := &fakePublisher{}
	d := New(pub, zap.NewNop())
	d.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }

	job := testJob()
	d.JobTransitioned(context.Background(), job, progress.CheckingStage)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, KeyJobTransitioned, ev.key)
	assert.Equal(t, "Checking_Stage", ev.payload["from"])
	assert.Equal(t, "Completed", ev.payload["to"])
	assert.Equal(t, "2025-03-04T10:00:00Z", ev.payload["occurredAt"])
}

func TestReturnNoteIssuedPayload(t *testing.T) {
	pub := &fakePublisher{}
	d := New(pub, zap.NewNop())

	note := &models.ReturnNote{
		ID:         uuid.New(),
		JobRef:     "IDSJBN-10-25-001",
		CreatedBy:  "creator1",
		IssuedDate: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	d.ReturnNoteIssued(context.Background(), testJob(), note)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, KeyJobReturnNote, ev.key)
	assert.Equal(t, note.ID.String(), ev.payload["noteId"])
	assert.Equal(t, "creator1", ev.payload["createdBy"])
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	d := New(pub, zap.NewNop())

	// must not panic or surface the failure
	d.JobCreated(context.Background(), testJob())
	d.NotifyCustomer(context.Background(), testJob(), progress.NotifyTemplateJobCompleted)
	assert.Empty(t, pub.events)
}

func TestNilPublisherIsNoOp(t *testing.T) {
	d := New(nil, zap.NewNop())
	d.JobCreated(context.Background(), testJob())
	d.Dispatch(context.Background(), testJob(), []progress.Intent{
		{Kind: progress.IntentNotifyCustomer, Template: progress.NotifyTemplateJobCompleted},
	})
}
