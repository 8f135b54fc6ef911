package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/repository/memory"
	"smartcity-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newNotificationService(t *testing.T, pub events.Publisher) *NotificationService {
	t.Helper()
	repo, err := memory.NewAlertRepository(memory.DefaultAlerts())
	require.NoError(t, err)
	return NewNotificationService(repo, pub, logger.NewNopLogger())
}

func TestNotificationServiceMarkAsReadPublishesOnChange(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newNotificationService(t, pub)
	ctx := context.Background()

	svc.MarkAsRead(ctx, 1)
	svc.MarkAsRead(ctx, 1)   // already read
	svc.MarkAsRead(ctx, 999) // unknown

	assert.Equal(t, 2, svc.GetUnreadCount(ctx))
	require.Equal(t, []string{events.AlertRead}, pub.types())
	assert.Equal(t, 1, pub.events[0].Payload()["alert_id"])
	assert.Equal(t, 2, pub.events[0].Payload()["unread_count"])
}

func TestNotificationServiceMarkAllAsRead(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newNotificationService(t, pub)
	ctx := context.Background()

	svc.MarkAllAsRead(ctx)
	svc.MarkAllAsRead(ctx)

	assert.Equal(t, 0, svc.GetUnreadCount(ctx))
	require.Equal(t, []string{events.AlertsAllRead}, pub.types())
	assert.Equal(t, 3, pub.events[0].Payload()["marked"])
	assert.Equal(t, 0, pub.events[0].Payload()["unread_count"])

	for _, a := range svc.GetNotifications(ctx) {
		assert.True(t, a.Read, "alert %d", a.ID)
	}
}

func TestNotificationServicePublishFailureDoesNotUndoRead(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus closed")}
	svc := newNotificationService(t, pub)
	ctx := context.Background()

	svc.MarkAsRead(ctx, 3)

	assert.Equal(t, 2, svc.GetUnreadCount(ctx))
	assert.Len(t, pub.types(), 1)
}

func TestNotificationServiceWithoutPublisher(t *testing.T) {
	svc := newNotificationService(t, nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		svc.MarkAsRead(ctx, 2)
		svc.MarkAllAsRead(ctx)
	})
	assert.Equal(t, 0, svc.GetUnreadCount(ctx))
}

func TestNotificationServiceConcurrentMarksPublishDecreasingCounts(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newNotificationService(t, pub)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%10 == 9 {
				svc.MarkAllAsRead(ctx)
				return
			}
			svc.MarkAsRead(ctx, i%3+1)
		}(i)
	}
	wg.Wait()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.NotEmpty(t, pub.events)

	prev := 4 // above the seeded unread count
	for _, e := range pub.events {
		count := e.Payload()["unread_count"].(int)
		assert.Less(t, count, prev, "published counts must only go down")
		prev = count
	}
	assert.Equal(t, 0, prev, "the last published count is the final badge")
}
