package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// detectHandler processes face detection requests: a multipart image upload
// in the "image" field, JSON detection result out.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := utils.DecodeImageBytes(imageData)
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

	start := time.Now()
	res, err := s.pipeline.ProcessImage(img)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			busyRejectionsTotal.Inc()
			detectRequestsTotal.WithLabelValues("image", "busy").Inc()
			w.Header().Set("Retry-After", "1")
			s.writeErrorResponse(w, "busy, retry later", http.StatusServiceUnavailable)
			return
		}
		detectRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Detection failed: %v", err), http.StatusInternalServerError)
		return
	}

	detectRequestsTotal.WithLabelValues("image", "success").Inc()
	detectProcessingDuration.WithLabelValues("image").Observe(duration.Seconds())
	facesDetected.WithLabelValues("image").Observe(float64(res.TotalFaces))

	// Output format: default json; 'format=text' in query or form for a
	// human-readable summary.
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(pipeline.ToText(res))); err != nil {
			slog.Error("Failed to write detect text response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to encode detect response", "error", err)
	}
}
