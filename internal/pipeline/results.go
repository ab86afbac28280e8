package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToJSON serializes a result as indented JSON.
func ToJSON(res *DetectionResult) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(data), nil
}

// ToText renders a human-readable summary of a result, one face per line.
// Transport strings are elided; they are of no use on a terminal.
func ToText(res *DetectionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d: %d face(s), %d cropped, %dms\n",
		res.Width, res.Height, res.TotalFaces, res.CroppedCount, res.Processing.TotalMs)
	for i, f := range res.Faces {
		fmt.Fprintf(&sb, "  face %d: (%d,%d) %dx%d conf=%.2f\n",
			i+1, f.X, f.Y, f.Width, f.Height, f.Confidence)
	}
	return sb.String()
}
