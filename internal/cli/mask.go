package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/extractor"
	"github.com/ironsheep/planvec/internal/imaging"
)

func newMaskCmd(a *app) *cobra.Command {
	var output, region string

	cmd := &cobra.Command{
		Use:   "mask [file]",
		Short: "Write the edge mask the contour tracer sees",
		Long: `Write the binary edge mask produced by smoothing, contrast equalization,
edge detection and closing as a grayscale PNG. Useful for tuning --canny-low,
--canny-high and --morph-kernel.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runMask(cmd.Context(), cfg, args[0], output, region)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write (required)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "process only a region: a name such as top-left, or x1,y1,x2,y2")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runMask(ctx context.Context, cfg config.Config, path, output, region string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := extractor.ReadFile(path, cfg.MaxInputBytes)
	if err != nil {
		return err
	}
	ex := extractor.New(cfg,
		extractor.WithHooks(extractor.NewLogHooks(logger)),
		extractor.WithRegionSpec(region))
	mask, err := ex.EdgeMask(ctx, data, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := imaging.WriteMaskPNG(f, mask); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Wrote %s with %d edge pixels", output, mask.Count()))
	return nil
}
