package server

import (
	"bytes"
	"image"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/visage/internal/detector"
	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/testutil"
)

// newTestServer builds a server backed by a real pipeline with defaults.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	srv, err := NewServer(Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     10,
		PipelineConfig: pipeline.DefaultConfig(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// stubPipeline is a pipelineInterface double for error-path tests.
type stubPipeline struct {
	res   *pipeline.DetectionResult
	err   error
	crops []string
}

func (s *stubPipeline) ProcessImage(image.Image) (*pipeline.DetectionResult, error) {
	return s.res, s.err
}

func (s *stubPipeline) CropFaces(image.Image, []detector.Face) []string {
	return s.crops
}

func (s *stubPipeline) Close() error { return nil }

// multipartImageBody builds a multipart form body with a PNG in the given
// field, returning the body and its content type.
func multipartImageBody(t *testing.T, field string, img image.Image) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "test.png")
	require.NoError(t, err)
	_, err = part.Write(testutil.EncodePNG(t, img))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}
