package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server, *auth.TokenManager, *models.Project) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Project{}))

	project := &models.Project{Name: "p", ClientID: 7, ManagerID: 8}
	require.NoError(t, db.Create(project).Error)

	hub := NewHub()
	tokens := auth.NewTokenManager("test-secret", 1, 1)
	server := httptest.NewServer(hub.Handler(tokens, db))
	t.Cleanup(server.Close)

	return hub, server, tokens, project
}

func wsURL(server *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
}

func TestHubBroadcastReachesSubscriber(t *testing.T) {
	hub, server, tokens, project := newHubServer(t)

	token, _, err := tokens.CreateTokens(auth.Principal{UserID: 7, Role: models.RoleClient})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(
		wsURL(server, fmt.Sprintf("token=%s&project=%d", token, project.ProjectID)), nil)
	require.NoError(t, err)
	defer conn.Close()

	// The server goroutine joins the room shortly after the handshake; wait
	// for it before broadcasting.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.rooms[project.ProjectID]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(project.ProjectID, EventProgressUpdated, map[string]int{"progress": 40})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, EventProgressUpdated, envelope.Event)
}

func TestHubBroadcastScopedToRoom(t *testing.T) {
	hub, server, tokens, project := newHubServer(t)

	token, _, err := tokens.CreateTokens(auth.Principal{UserID: 8, Role: models.RoleProjectManager})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(
		wsURL(server, fmt.Sprintf("token=%s&project=%d", token, project.ProjectID)), nil)
	require.NoError(t, err)
	defer conn.Close()

	// A broadcast to a different room never arrives here.
	hub.Broadcast(project.ProjectID+1, EventNewMessage, "elsewhere")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "nothing should arrive from another room")
}

func TestHubHandlerRejectsBadRequests(t *testing.T) {
	_, server, tokens, project := newHubServer(t)

	token, _, err := tokens.CreateTokens(auth.Principal{UserID: 99, Role: models.RoleClient})
	require.NoError(t, err)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"missing token", fmt.Sprintf("project=%d", project.ProjectID), http.StatusUnauthorized},
		{"bad project id", "token=" + token + "&project=abc", http.StatusBadRequest},
		{"missing project", "token=" + token + "&project=424242", http.StatusNotFound},
		{"no access", fmt.Sprintf("token=%s&project=%d", token, project.ProjectID), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/?" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
