package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flightline-ops/sortie-core/pkg/config"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Notification
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotifyDeliversPerRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(config.NotificationsConfig{Workers: 2}, sender, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), []string{"student-1", "instructor-1", ""}, "assignment-1", "reconfirm")

	deadline := time.After(2 * time.Second)
	for sender.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 notifications, got %d", sender.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Equal(t, 2, sender.count())
}

func TestNotifyBeforeStartDoesNotPanic(t *testing.T) {
	svc := NewNotificationService(config.NotificationsConfig{}, &recordingSender{}, nil)
	svc.Notify(context.Background(), []string{"student-1"}, "assignment-1", "dropped")
}
