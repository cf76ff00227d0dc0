package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/pkg/config"
	"github.com/flightline-ops/sortie-core/pkg/jobs"
)

// Notification is one message for one recipient.
type Notification struct {
	RecipientID  string    `json:"recipient_id"`
	AssignmentID string    `json:"assignment_id"`
	Message      string    `json:"message"`
	SentAt       time.Time `json:"sent_at"`
}

// NotificationSender delivers a single notification to its recipient.
// The default implementation just logs; real transports (push, email)
// plug in here.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the application log. Used until a
// real delivery channel is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a logging sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the notification payload.
func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.logger.Info("notification dispatched",
		zap.String("recipient_id", n.RecipientID),
		zap.String("assignment_id", n.AssignmentID),
		zap.String("message", n.Message))
	return nil
}

// NotificationService fans notifications out through a background worker
// queue. Dispatch is fire-and-forget: replanning never blocks on, or
// fails because of, delivery.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the dispatcher backed by an in-memory queue.
func NewNotificationService(cfg config.NotificationsConfig, sender NotificationSender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		n, ok := job.Payload.(Notification)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sender.Send(ctx, n)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &NotificationService{queue: queue, logger: logger}
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues one message per recipient. Enqueue failures are logged
// and swallowed.
func (s *NotificationService) Notify(_ context.Context, recipientIDs []string, assignmentID, message string) {
	now := time.Now().UTC()
	for _, recipient := range recipientIDs {
		if recipient == "" {
			continue
		}
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "assignment_notice",
			Payload: Notification{RecipientID: recipient, AssignmentID: assignmentID, Message: message, SentAt: now},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("notification enqueue failed",
				zap.String("recipient_id", recipient),
				zap.String("assignment_id", assignmentID),
				zap.Error(err))
		}
	}
}
