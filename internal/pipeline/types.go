package pipeline

// FaceBox is the clamped per-face geometry reported in results.
type FaceBox struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// DetectionResult is the per-image aggregated pipeline output. Image payloads
// travel as data URIs produced by the codec.
type DetectionResult struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Faces      []FaceBox `json:"faces"`
	TotalFaces int       `json:"total_faces"`

	// OriginalImage is only populated when the pipeline is configured to
	// echo the input back (clients may want both versions side by side).
	OriginalImage  string   `json:"original_image,omitempty"`
	ProcessedImage string   `json:"processed_image"`
	CroppedFaces   []string `json:"cropped_faces,omitempty"`

	// CroppedCount reports how many crops succeeded; per-face failures are
	// skipped rather than aborting the batch, so this may be less than
	// TotalFaces.
	CroppedCount int `json:"cropped_count"`

	Processing struct {
		DetectionNs int64 `json:"detection_ns"`
		AnnotateNs  int64 `json:"annotate_ns"`
		EncodeNs    int64 `json:"encode_ns"`
		TotalNs     int64 `json:"total_ns"`
		TotalMs     int64 `json:"total_ms"`
	} `json:"processing"`
}
