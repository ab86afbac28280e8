package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/visage/internal/codec"
	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow any origin in development; production deployments should
		// check against allowed origins.
		return true
	},
}

// WebSocketDetectRequest is a detection request sent as a text frame. Binary
// frames carry raw image bytes instead and need no envelope.
type WebSocketDetectRequest struct {
	ImageData string `json:"image_data"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketDetectResponse is a detection response sent over WebSocket.
type WebSocketDetectResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// detectWebSocketHandler handles WebSocket connections for streaming
// detection: one image per message, one result per image.
func (s *Server) detectWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hanging connections; pongs extend it.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Periodic pings keep the connection alive.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		switch messageType {
		case websocket.TextMessage:
			s.handleWebSocketText(conn, data)
		case websocket.BinaryMessage:
			s.processWebSocketImageBytes(conn, data, newRequestID())
		}
	}
}

// handleWebSocketText processes a JSON request frame carrying a
// transport-encoded image.
func (s *Server) handleWebSocketText(conn *websocket.Conn, data []byte) {
	var req WebSocketDetectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	if req.ImageData == "" {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}

	raw, err := codec.DecodeDataURI(req.ImageData)
	if err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Invalid image encoding: %v", err))
		return
	}

	s.processWebSocketImageBytes(conn, raw, newRequestID())
}

// processWebSocketImageBytes runs the pipeline on raw image bytes and streams
// status updates back to the client.
func (s *Server) processWebSocketImageBytes(conn *websocket.Conn, raw []byte, requestID string) {
	img, _, err := utils.DecodeImageBytes(raw)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketDetectResponse{
		Type:      "detect_response",
		Status:    "processing",
		RequestID: requestID,
	})

	s.processWebSocketImage(conn, img, requestID)
}

// processWebSocketImage runs detection on a decoded image.
func (s *Server) processWebSocketImage(conn *websocket.Conn, img image.Image, requestID string) {
	start := time.Now()
	res, err := s.pipeline.ProcessImage(img)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			busyRejectionsTotal.Inc()
			detectRequestsTotal.WithLabelValues("websocket", "busy").Inc()
			s.sendWebSocketError(conn, "busy", "busy, retry later")
			return
		}
		detectRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Detection failed: %v", err))
		return
	}

	detectRequestsTotal.WithLabelValues("websocket", "success").Inc()
	detectProcessingDuration.WithLabelValues("websocket").Observe(duration.Seconds())
	facesDetected.WithLabelValues("websocket").Observe(float64(res.TotalFaces))

	s.sendWebSocketResponse(conn, WebSocketDetectResponse{
		Type:      "detect_response",
		Status:    "completed",
		Result:    res,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDetectResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketDetectResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}

func newRequestID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
