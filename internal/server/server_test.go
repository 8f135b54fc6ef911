package server

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartcity-be/internal/bootstrap"
	"smartcity-be/internal/config"
	"smartcity-be/internal/constant"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			WsLogFilePath:      filepath.Join(dir, "console.log"),
			CorsAllowedOrigins: "*",
		},
		Chat: config.ChatConfig{
			ReplyDelay:     20 * time.Millisecond,
			SessionTTL:     time.Hour,
			SessionCleanup: time.Minute,
		},
	}

	container, err := bootstrap.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(container.Shutdown)

	return New(cfg, container)
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/api/chatbot/v1/sessions", "")
	require.Equal(t, http.StatusCreated, status)

	var data struct {
		ID         string `json:"id"`
		Transcript []turn `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Transcript, 1)
	assert.Equal(t, constant.ChatGreeting, data.Transcript[0].Text)
	return data.ID
}

func transcript(t *testing.T, app *fiber.App, id string) []turn {
	t.Helper()
	status, env := do(t, app, http.MethodGet, "/api/chatbot/v1/sessions/"+id+"/transcript", "")
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Turns []turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Turns
}

func TestHealth(t *testing.T) {
	app := newTestServer(t).GetApp()

	status, env := do(t, app, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestNotificationRoutes(t *testing.T) {
	app := newTestServer(t).GetApp()

	status, env := do(t, app, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Data []struct {
			ID     int    `json:"id"`
			Type   string `json:"type"`
			Read   bool   `json:"read"`
			Accent string `json:"accent"`
		} `json:"data"`
		Total  int `json:"total"`
		Unread int `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 6, list.Total)
	assert.Equal(t, 3, list.Unread)
	require.Len(t, list.Data, 6)
	assert.Equal(t, 1, list.Data[0].ID)
	assert.Equal(t, "danger", list.Data[0].Type)
	assert.Equal(t, "var(--danger)", list.Data[0].Accent)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		count  int
	}{
		{"non-integer id", http.MethodPatch, "/api/notifications/abc/read", http.StatusBadRequest, -1},
		{"unknown id is a no-op", http.MethodPatch, "/api/notifications/999/read", http.StatusOK, 3},
		{"mark one", http.MethodPatch, "/api/notifications/1/read", http.StatusOK, 2},
		{"mark same again", http.MethodPatch, "/api/notifications/1/read", http.StatusOK, 2},
		{"unread count", http.MethodGet, "/api/notifications/unread-count", http.StatusOK, 2},
		{"mark all", http.MethodPatch, "/api/notifications/read-all", http.StatusOK, 0},
		{"mark all again", http.MethodPatch, "/api/notifications/read-all", http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, "")
			require.Equal(t, tt.status, status)
			if tt.count < 0 {
				assert.False(t, env.Success)
				return
			}
			var data struct {
				Count int `json:"count"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, tt.count, data.Count)
		})
	}
}

func TestChatbotRoutes(t *testing.T) {
	app := newTestServer(t).GetApp()
	id := createSession(t, app)

	status, env := do(t, app, http.MethodGet, "/api/chatbot/v1/suggestions", "")
	require.Equal(t, http.StatusOK, status)
	var suggestions []string
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	assert.Equal(t, constant.ChatSuggestions, suggestions)

	status, _ = do(t, app, http.MethodPost, "/api/chatbot/v1/chat", `{"chat_session_id":"`+id+`","chat":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status, "blank chat")

	status, _ = do(t, app, http.MethodPost, "/api/chatbot/v1/chat", `{"chat_session_id":"not-a-uuid","chat":"traffic"}`)
	assert.Equal(t, http.StatusBadRequest, status, "malformed session id")

	status, _ = do(t, app, http.MethodPost, "/api/chatbot/v1/chat", `{"chat_session_id":"3f2a8c1e-0000-4000-8000-000000000000","chat":"traffic"}`)
	assert.Equal(t, http.StatusNotFound, status, "unknown session")

	status, env = do(t, app, http.MethodPost, "/api/chatbot/v1/chat", `{"chat_session_id":"`+id+`","chat":"How is the Air Quality Status?"}`)
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, http.StatusAccepted, env.Code)

	require.Eventually(t, func() bool { return len(transcript(t, app, id)) == 3 }, 2*time.Second, 10*time.Millisecond)
	turns := transcript(t, app, id)
	assert.Equal(t, "How is the Air Quality Status?", turns[1].Text)
	assert.Equal(t, "assistant", turns[2].Speaker)
	assert.Equal(t, constant.ChatReplyAirQuality, turns[2].Text)

	status, _ = do(t, app, http.MethodDelete, "/api/chatbot/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, app, http.MethodDelete, "/api/chatbot/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodGet, "/api/chatbot/v1/sessions/"+id+"/transcript", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebSocketHandshakeErrors(t *testing.T) {
	app := newTestServer(t).GetApp()
	id := createSession(t, app)

	status, _ := do(t, app, http.MethodGet, "/api/ws", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/ws?session=missing", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodGet, "/api/ws?session="+id, "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
}

func TestWebSocketConsole(t *testing.T) {
	srv := newTestServer(t)
	app := srv.GetApp()
	id := createSession(t, app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/ws?session="+id, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.container.WebSocketHub.ClientCount(id) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat", "text": "energy usage today"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "mark_all_read"}))

	seen := map[string]json.RawMessage{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(seen) < 2 {
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		seen[frame.Type] = frame.Data
	}

	var reply turn
	require.NoError(t, json.Unmarshal(seen["turn"], &reply))
	assert.Equal(t, "assistant", reply.Speaker)
	assert.Equal(t, constant.ChatReplyEnergy, reply.Text)

	var unread struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(seen["unread_count"], &unread))
	assert.Equal(t, 0, unread.Count)

	// Closing the last console ends the chat session.
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		status, _ := do(t, app, http.MethodGet, "/api/chatbot/v1/sessions/"+id+"/transcript", "")
		return status == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketReconnectCycles(t *testing.T) {
	srv := newTestServer(t)
	app := srv.GetApp()
	id := createSession(t, app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/ws?session=" + id
	hub := srv.container.WebSocketHub

	// The anchor keeps the chat session alive while other tabs come and go.
	anchor, _, err := fws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer anchor.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(id) == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 100; i++ {
		conn, _, err := fws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err, "cycle %d", i)
		if i%2 == 0 {
			require.NoError(t, conn.WriteJSON(map[string]string{"type": "mark_all_read"}))
		}
		require.NoError(t, conn.Close())
	}
	require.Eventually(t, func() bool { return hub.ClientCount(id) == 1 }, 2*time.Second, 5*time.Millisecond)

	// Pooled connections were never written to after release: the anchor
	// still gets exactly its own frames.
	require.NoError(t, anchor.WriteJSON(map[string]string{"type": "chat", "text": "waste bin alerts"}))
	require.NoError(t, anchor.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, anchor.ReadJSON(&frame))
		if frame.Type != "turn" {
			continue
		}
		var reply turn
		require.NoError(t, json.Unmarshal(frame.Data, &reply))
		assert.Equal(t, constant.ChatReplyWaste, reply.Text)
		break
	}
}
