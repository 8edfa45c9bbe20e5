package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fendaq/text-detection-1/internal/config"
	"github.com/fendaq/text-detection-1/internal/pipeline"
	"github.com/fendaq/text-detection-1/internal/utils"
)

// pipelineBuilder maps the file-level configuration onto a pipeline builder,
// so every loadable key (connector thresholds, crop margins, GPU memory
// limit) reaches the pipeline.
func pipelineBuilder(cfg *config.Config) *pipeline.Builder {
	return pipeline.NewBuilderFrom(cfg.ToPipelineConfig())
}

// fileResult pairs an input path with its pipeline output for JSON output.
type fileResult struct {
	File   string           `json:"file"`
	Result *pipeline.Result `json:"result"`
}

var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Detect and read text in image files",
	Long: `Run the full pipeline on one or more image files and print the
recognized text regions as JSON.

Supported formats: JPEG, PNG, BMP

Examples:
  ocr image photo.jpg
  ocr image scan1.png scan2.png --score-threshold 0.6`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runImage,
}

func runImage(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipelineBuilder(cfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]fileResult, 0, len(args))
	for _, path := range args {
		img, err := utils.LoadImage(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		res, err := p.ProcessImage(ctx, img)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		results = append(results, fileResult{File: path, Result: res})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().Float64("score-threshold", 0.7, "proposal confidence cutoff")
	imageCmd.Flags().Float64("nms-threshold", 0.3, "IoU threshold for non-max suppression")
	imageCmd.Flags().Bool("loose-crop", false, "expand region crops with margins")

	_ = bindImageFlags()
}

func bindImageFlags() error {
	v := GetConfigLoader().Viper()
	if err := v.BindPFlag("detector.score_threshold", imageCmd.Flags().Lookup("score-threshold")); err != nil {
		return err
	}
	if err := v.BindPFlag("detector.nms_threshold", imageCmd.Flags().Lookup("nms-threshold")); err != nil {
		return err
	}
	return v.BindPFlag("rectify.loose_crop", imageCmd.Flags().Lookup("loose-crop"))
}
