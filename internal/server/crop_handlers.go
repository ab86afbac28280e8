package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/visage/internal/codec"
	"github.com/MeKo-Tech/visage/internal/detector"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// cropHandler extracts face crops from a transport-encoded image. The request
// carries the image as a data URI (or bare base64) plus the rectangles to cut
// out; the response carries one data URI per surviving crop. Rectangles that
// degenerate to nothing after clamping are dropped, not errors.
func (s *Server) cropHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var req CropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	if req.ImageData == "" {
		s.writeErrorResponse(w, "No image data provided", http.StatusBadRequest)
		return
	}

	raw, err := codec.DecodeDataURI(req.ImageData)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image encoding", http.StatusBadRequest)
		return
	}
	uploadSizeBytes.Observe(float64(len(raw)))

	img, _, err := utils.DecodeImageBytes(raw)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateImageConstraints(img, s.imageConstraints()); err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Detection pipeline not initialized", http.StatusServiceUnavailable)
		return
	}

	faces := make([]detector.Face, len(req.Faces))
	for i, f := range req.Faces {
		faces[i] = detector.Face{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
	}

	start := time.Now()
	cropped := s.pipeline.CropFaces(img, faces)
	detectRequestsTotal.WithLabelValues("crop", "success").Inc()
	detectProcessingDuration.WithLabelValues("crop").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	response := CropResponse{
		CroppedFaces: cropped,
		Count:        len(cropped),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode crop response", "error", err)
	}
}
