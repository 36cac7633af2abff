package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OwaisSafa/ChessVerse/internal/api/apierr"
	"github.com/OwaisSafa/ChessVerse/internal/api/response"
	"github.com/OwaisSafa/ChessVerse/internal/factory"
	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T, staticDir string) *testServer {
	t.Helper()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	return &testServer{
		handler: app.Router(staticDir),
		app:     app,
	}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// seatAlice creates a room with a white player named Alice and returns its code
func (ts *testServer) seatAlice(t *testing.T) model.RoomCode {
	t.Helper()
	ctx := context.Background()
	created, err := ts.app.Allocator.Allocate(ctx, func(r *model.Room) error {
		if _, err := ts.app.Registry.Register(ctx, "alice", "Alice", r.Code, model.ColorWhite); err != nil {
			return err
		}
		r.WhitePlayer = "alice"
		r.Members = append(r.Members, "alice")
		return nil
	})
	require.NoError(t, err)
	return created.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t, "")
	code := ts.seatAlice(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+string(code))
	require.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, string(code), room.Code)
	assert.Equal(t, string(model.RoomStateWaiting), room.State)
	assert.Equal(t, 1, room.MemberCount)
	assert.Equal(t, "Alice", room.White)
	assert.Empty(t, room.Black)
	assert.NotContains(t, rr.Body.String(), `"alice"`)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/0000")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var errResp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, apierr.CodeRoomNotFound, errResp.Error.Code)
	assert.Equal(t, "Room not found", errResp.Error.Message)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/v1/games")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStaticMount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>chess</h1>"), 0o600))
	ts := newTestServer(t, dir)

	rr := ts.request(http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<h1>chess</h1>")

	// The API still wins over the static mount
	rr = ts.request(http.MethodGet, "/api/v1/health")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestWebsocketThroughMiddleware(t *testing.T) {
	ts := newTestServer(t, "")
	server := httptest.NewServer(ts.handler)
	defer server.Close()
	defer ts.app.Hub.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	var env model.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, model.EventConnectionEstablished, env.Event)
	assert.JSONEq(t, `{"status":"connected"}`, string(env.Data))
}
