package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/jobdesk/backend/internal/dispatch"
	"github.com/example/jobdesk/backend/internal/mq"
	"github.com/example/jobdesk/backend/internal/progress"
)

// Gateway delivers a rendered message to a customer phone number.
type Gateway interface {
	SendText(ctx context.Context, phone, text string) error
}

// NotificationWorker consumes job notification events from the queue and
// delivers them through the messaging gateway. Delivery is best-effort: a
// failed send is logged and the message is acknowledged anyway, because the
// transition that produced it has already been committed and there is no
// retry policy.
type NotificationWorker struct {
	id       string
	consumer mq.Consumer
	gateway  Gateway
	log      *zap.Logger
	timeout  time.Duration
}

// NewNotificationWorker creates the worker with a random identifier.
func NewNotificationWorker(consumer mq.Consumer, gateway Gateway, log *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		id:       uuid.New().String(),
		consumer: consumer,
		gateway:  gateway,
		log:      log,
		timeout:  15 * time.Second,
	}
}

// Run starts consuming and blocks until the context is canceled.
func (w *NotificationWorker) Run(ctx context.Context) error {
	if err := w.consumer.Consume(w.handle); err != nil {
		return err
	}
	<-ctx.Done()
	w.log.Info("notification worker shutting down", zap.String("workerId", w.id))
	return w.consumer.Close()
}

type notifyEvent struct {
	Event    string `json:"event"`
	Template string `json:"template"`
	JobRef   string `json:"jobRef"`
	Customer string `json:"customer"`
	Phone    string `json:"phone"`
	Device   string `json:"device"`
}

func (w *NotificationWorker) handle(msg amqp091.Delivery) {
	defer func() {
		if err := msg.Ack(false); err != nil {
			w.log.Warn("ack failed", zap.Error(err))
		}
	}()

	switch msg.RoutingKey {
	case dispatch.KeyJobNotify, dispatch.KeyJobReturnNote:
	default:
		return
	}

	var ev notifyEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		w.log.Warn("bad notification payload", zap.String("routingKey", msg.RoutingKey), zap.Error(err))
		return
	}
	if ev.Phone == "" {
		w.log.Warn("notification without customer phone", zap.String("jobRef", ev.JobRef))
		return
	}

	text := renderMessage(msg.RoutingKey, ev)

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.gateway.SendText(ctx, ev.Phone, text); err != nil {
		w.log.Warn("customer notification failed",
			zap.String("jobRef", ev.JobRef),
			zap.String("routingKey", msg.RoutingKey),
			zap.Error(err))
	}
}

// renderMessage produces the customer-facing text body for an event.
func renderMessage(routingKey string, ev notifyEvent) string {
	switch {
	case routingKey == dispatch.KeyJobReturnNote:
		return fmt.Sprintf("Hello %s, a return note has been issued for your %s (job %s). Please present it when collecting the device.",
			ev.Customer, ev.Device, ev.JobRef)
	case ev.Template == progress.NotifyTemplateJobCompleted:
		return fmt.Sprintf("Hello %s, your %s (job %s) has been repaired and is ready for pickup.",
			ev.Customer, ev.Device, ev.JobRef)
	default:
		return fmt.Sprintf("Hello %s, there is an update on your job %s.", ev.Customer, ev.JobRef)
	}
}
