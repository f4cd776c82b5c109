package progress

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathgen-backend/internal/shared/auth"
)

func newRouter(hub *Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(hub, 10*time.Millisecond).RegisterRoutes(r.Group("/api"))
	return r
}

func TestEventsRequiresToken(t *testing.T) {
	r := newRouter(NewHub())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventsStreamsFramesAndRemovesMailbox(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")
	token, err := auth.SignJWT(auth.Claims{Sub: "user-1"})
	require.NoError(t, err)

	hub := NewHub()
	srv := httptest.NewServer(newRouter(hub))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readFrame := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	assert.JSONEq(t, `{"type":"progress","message":"Connected to progress updates"}`, readFrame())
	hub.Send("user-1", "Generating problems...")
	frame := readFrame()
	for frame == `{"type":"ping"}` {
		frame = readFrame()
	}
	assert.JSONEq(t, `{"type":"progress","message":"Generating problems..."}`, frame)

	cancel()
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		_, ok := hub.boxes["user-1"]
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestShutdownEndsOpenStreams(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")
	token, err := auth.SignJWT(auth.Claims{Sub: "user-1"})
	require.NoError(t, err)

	hub := NewHub()
	srv := httptest.NewUnstartedServer(newRouter(hub))
	srv.Config.RegisterOnShutdown(hub.Close)
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, srv.Config.Shutdown(ctx))
	assert.Less(t, time.Since(start), time.Second)
}
