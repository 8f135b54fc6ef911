package service

import (
	"context"
	"sync"
	"time"

	"smartcity-be/internal/model"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/repository"
	"smartcity-be/pkg/events"
)

type INotificationService interface {
	GetNotifications(ctx context.Context) []model.Alert
	GetUnreadCount(ctx context.Context) int
	MarkAsRead(ctx context.Context, id int)
	MarkAllAsRead(ctx context.Context)
}

var _ INotificationService = (*NotificationService)(nil)

type NotificationService struct {
	// held across change and publish so events leave in the order the
	// changes were made
	mu sync.Mutex

	repo      repository.AlertRepository
	publisher events.Publisher
	logger    logger.ILogger
}

func NewNotificationService(repo repository.AlertRepository, publisher events.Publisher, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// GetNotifications returns every alert in seed order.
func (s *NotificationService) GetNotifications(ctx context.Context) []model.Alert {
	return s.repo.List()
}

func (s *NotificationService) GetUnreadCount(ctx context.Context) int {
	return s.repo.UnreadCount()
}

// MarkAsRead marks a notification as read. An id the store does not know is
// ignored: ids come from the same list the console rendered.
func (s *NotificationService) MarkAsRead(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, unread := s.repo.MarkRead(id)
	if !changed {
		s.logger.Debug("NotificationService", "MarkAsRead was a no-op", map[string]interface{}{"alert_id": id})
		return
	}

	s.publish(ctx, events.AlertRead, map[string]interface{}{
		"alert_id":     id,
		"unread_count": unread,
	})
}

// MarkAllAsRead marks every notification as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked, unread := s.repo.MarkAllRead()
	if marked == 0 {
		return
	}

	s.publish(ctx, events.AlertsAllRead, map[string]interface{}{
		"marked":       marked,
		"unread_count": unread,
	})
}

// publish never fails the caller; read state is already committed.
func (s *NotificationService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("NotificationService", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
