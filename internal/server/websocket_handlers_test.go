package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/visage/internal/codec"
	"github.com/MeKo-Tech/visage/internal/testutil"
)

func dialTestWebSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/detect/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketDetectResponse {
	t.Helper()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp WebSocketDetectResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestDetectWebSocket_BinaryFrame(t *testing.T) {
	srv := newTestServer(t)
	conn := dialTestWebSocket(t, srv)

	pngBytes := testutil.EncodePNG(t, testutil.GenerateFaceImage(300, 300))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, pngBytes))

	processing := readResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)
	assert.NotEmpty(t, processing.RequestID)

	completed := readResponse(t, conn)
	require.Equal(t, "completed", completed.Status)
	assert.Equal(t, processing.RequestID, completed.RequestID)

	result, ok := completed.Result.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 1.0, result["total_faces"], 1e-9)
}

func TestDetectWebSocket_TextFrame(t *testing.T) {
	srv := newTestServer(t)
	conn := dialTestWebSocket(t, srv)

	pngBytes := testutil.EncodePNG(t, testutil.GenerateFaceImage(300, 300))
	req := WebSocketDetectRequest{ImageData: codec.FormatDataURI("image/png", pngBytes)}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	processing := readResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)

	completed := readResponse(t, conn)
	assert.Equal(t, "completed", completed.Status)
}

func TestDetectWebSocket_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)
	conn := dialTestWebSocket(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestDetectWebSocket_MissingImageData(t *testing.T) {
	srv := newTestServer(t)
	conn := dialTestWebSocket(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"image_data":""}`)))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "No image data")
}

func TestDetectWebSocket_UndecodableImage(t *testing.T) {
	srv := newTestServer(t)
	conn := dialTestWebSocket(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("not an image")))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "processing_error", resp.ErrorType)
}
