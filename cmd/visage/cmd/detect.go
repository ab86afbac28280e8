package cmd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/visage/internal/codec"
	"github.com/MeKo-Tech/visage/internal/config"
	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/render"
	"github.com/MeKo-Tech/visage/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// detectCmd represents the detect command.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect faces in image files",
	Long: `Process one or more image files, detecting faces and reporting their
bounding boxes and confidence scores.

Supported formats: JPEG, PNG, BMP

Examples:
  visage detect photo.jpg
  visage detect *.png --format json
  visage detect photo.jpg --overlay annotated.jpg --crops-dir faces/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	cfg := GetConfig()

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	if format != outputFormatJSON && format != outputFormatText {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			format, strings.Join([]string{outputFormatJSON, outputFormatText}, ", "))
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	overlayTo := cfg.Output.OverlayTo
	if cmd.Flags().Changed("overlay") {
		overlayTo, _ = cmd.Flags().GetString("overlay")
	}
	if overlayTo != "" && len(args) > 1 {
		return errors.New("--overlay requires a single input file")
	}

	cropDir := cfg.Output.CropDir
	if cmd.Flags().Changed("crops-dir") {
		cropDir, _ = cmd.Flags().GetString("crops-dir")
	}

	minDim := cfg.Pipeline.Detector.MinDimension
	if cmd.Flags().Changed("min-dimension") {
		minDim, _ = cmd.Flags().GetInt("min-dimension")
	}

	confidence := cfg.Pipeline.Detector.ConfidenceThreshold
	if cmd.Flags().Changed("confidence") {
		confidence, _ = cmd.Flags().GetFloat64("confidence")
	}
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("invalid confidence threshold: %.2f (must be between 0.0 and 1.0)", confidence)
	}

	workers, _ := cmd.Flags().GetInt("workers")

	p, err := buildDetectPipeline(cfg, minDim, confidence, cropDir != "")
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	constraints := utils.DefaultImageConstraints()
	if cfg.Pipeline.Detector.MaxImageSize > 0 {
		constraints.MaxWidth = cfg.Pipeline.Detector.MaxImageSize
		constraints.MaxHeight = cfg.Pipeline.Detector.MaxImageSize
	}

	images := make([]image.Image, len(args))
	for i, path := range args {
		img, _, err := utils.LoadImage(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := utils.ValidateImageConstraints(img, constraints); err != nil {
			return fmt.Errorf("validating %s: %w", path, err)
		}
		images[i] = img
	}

	results, err := p.ProcessImages(images, pipeline.ParallelConfig{MaxWorkers: workers})
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	for i, res := range results {
		if err := emitResult(cmd, args[i], res, format, outputFile); err != nil {
			return err
		}
		if overlayTo != "" {
			if err := writeDataURIFile(res.ProcessedImage, overlayTo); err != nil {
				return fmt.Errorf("writing overlay: %w", err)
			}
		}
		if cropDir != "" {
			if err := writeCrops(args[i], res, cropDir, p.Config().Encode.Format); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildDetectPipeline assembles the pipeline from config values. Per-face
// crops are only produced when a crops directory was requested.
func buildDetectPipeline(
	cfg *config.Config, minDim int, confidence float64, needCrops bool,
) (*pipeline.Pipeline, error) {
	annotate := render.DefaultOptions()
	if c := parseHexColor(cfg.Pipeline.Annotate.BoxColor); c != nil {
		annotate.Color = c
	}
	if cfg.Pipeline.Annotate.Thickness > 0 {
		annotate.Thickness = cfg.Pipeline.Annotate.Thickness
	}
	annotate.DrawLabels = cfg.Pipeline.Annotate.DrawLabels

	return pipeline.NewBuilder().
		WithMinDimension(minDim).
		WithConfidenceThreshold(confidence).
		WithAnnotateOptions(annotate).
		WithEncodeOptions(pipeline.EncodeOptions{
			Format:      cfg.Pipeline.Encode.Format,
			JPEGQuality: cfg.Pipeline.Encode.JPEGQuality,
		}).
		WithIncludeOriginal(false).
		WithCropFaces(needCrops).
		WithWorkers(cfg.Pipeline.Workers, cfg.Pipeline.QueueDepth).
		Build()
}

// emitResult prints or writes a single detection result.
func emitResult(cmd *cobra.Command, path string, res *pipeline.DetectionResult, format, outputFile string) error {
	var out string
	switch format {
	case outputFormatJSON:
		s, err := pipeline.ToJSON(res)
		if err != nil {
			return fmt.Errorf("formatting result for %s: %w", path, err)
		}
		out = s
	default:
		out = fmt.Sprintf("%s %s", path, pipeline.ToText(res))
	}

	if outputFile != "" {
		f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-provided output path
		if err != nil {
			return fmt.Errorf("opening output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if _, err := fmt.Fprintln(f, out); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// writeCrops writes each cropped face to cropDir as
// <input-stem>_face_<n>.<ext>.
func writeCrops(inputPath string, res *pipeline.DetectionResult, cropDir, encFormat string) error {
	if len(res.CroppedFaces) == 0 {
		return nil
	}
	if err := os.MkdirAll(cropDir, 0o750); err != nil {
		return fmt.Errorf("creating crops directory: %w", err)
	}

	ext := ".jpg"
	if encFormat == "png" {
		ext = ".png"
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	for i, uri := range res.CroppedFaces {
		name := filepath.Join(cropDir, fmt.Sprintf("%s_face_%d%s", stem, i+1, ext))
		if err := writeDataURIFile(uri, name); err != nil {
			return fmt.Errorf("writing crop %d: %w", i+1, err)
		}
	}
	return nil
}

// writeDataURIFile decodes a transport string back to bytes and writes them.
func writeDataURIFile(uri, path string) error {
	data, err := codec.DecodeDataURI(uri)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// parseHexColor parses colors like "#RRGGBB" or "RRGGBB".
func parseHexColor(s string) color.Color {
	if s == "" {
		return nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return nil
	}
	return color.RGBA{uint8(rv), uint8(gv), uint8(bv), 255} //nolint:gosec // G115: RGB components fit in uint8
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringP("format", "f", "json", "output format (json, text)")
	detectCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	detectCmd.Flags().String("overlay", "", "write the annotated image to this file (single input only)")
	detectCmd.Flags().String("crops-dir", "", "write per-face crops into this directory")
	detectCmd.Flags().Int("min-dimension", 200, "smallest image dimension considered for detection")
	detectCmd.Flags().Float64("confidence", 0.5, "detection confidence threshold (0..1)")
	detectCmd.Flags().IntP("workers", "w", 0, "parallel workers for multiple inputs (0 = auto)")
}
