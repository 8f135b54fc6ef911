package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"smartcity-be/internal/model"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/pkg/serverutils"
	internalWS "smartcity-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotificationService struct {
	mu      sync.Mutex
	marked  []int
	allRead int
}

func (s *stubNotificationService) GetNotifications(ctx context.Context) []model.Alert {
	return []model.Alert{{ID: 7, Severity: model.SeverityWarning}}
}

func (s *stubNotificationService) GetUnreadCount(ctx context.Context) int { return 1 }

func (s *stubNotificationService) MarkAsRead(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, id)
}

func (s *stubNotificationService) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allRead++
}

func newTestApp(svc *stubNotificationService) (*fiber.App, *NotificationHandler) {
	h := NewNotificationHandler(svc, nil, internalWS.NewHub(logger.NewNopLogger()), logger.NewNopLogger())
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	h.RegisterRoutes(app.Group("/api"))
	return app, h
}

func TestNotificationHandlerUsesServiceInterface(t *testing.T) {
	svc := &stubNotificationService{}
	app, _ := newTestApp(svc)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/notifications", http.StatusOK},
		{http.MethodPatch, "/api/notifications/7/read", http.StatusOK},
		{http.MethodPatch, "/api/notifications/x/read", http.StatusBadRequest},
		{http.MethodPatch, "/api/notifications/read-all", http.StatusOK},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}

	assert.Equal(t, []int{7}, svc.marked)
	assert.Equal(t, 1, svc.allRead)
}

func TestNotificationHandlerInboundFrames(t *testing.T) {
	svc := &stubNotificationService{}
	_, h := newTestApp(svc)
	client := &internalWS.Client{SessionID: "s"}

	h.HandleInbound(client, []byte(`{"type":"mark_read","id":3}`))
	h.HandleInbound(client, []byte(`{"type":"mark_all_read"}`))
	h.HandleInbound(client, []byte(`{"type":"dance"}`))
	h.HandleInbound(client, []byte(`garbage`))

	assert.Equal(t, []int{3}, svc.marked)
	assert.Equal(t, 1, svc.allRead)
}
