package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/export"
	"github.com/ironsheep/planvec/internal/extractor"
	"github.com/ironsheep/planvec/internal/imaging"
)

const (
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

// extractOpts holds the flags of the extract command.
type extractOpts struct {
	output  string // result file; stdout when empty
	format  string // json or geojson
	overlay string // optional overlay PNG path
	region  string // region name or x1,y1,x2,y2
	grid    int    // overlay grid spacing, 0 for none
	mask    bool   // input is an edge mask written by the mask command
}

func newExtractCmd(a *app) *cobra.Command {
	opts := extractOpts{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Vectorize one plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if opts.mask && opts.region != "" {
				return fmt.Errorf("--region does not apply to --from-mask input")
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, geojson")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "", "also draw the polygons over the plan into this PNG")
	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "process only a region: a name such as top-left, or x1,y1,x2,y2")
	cmd.Flags().IntVar(&opts.grid, "grid", 0, "overlay grid spacing in pixels")
	cmd.Flags().BoolVar(&opts.mask, "from-mask", false, "treat the input as an edge mask PNG (white edges) and skip preprocessing")

	return cmd
}

func validateFormat(f string) error {
	if f != formatJSON && f != formatGeoJSON {
		return fmt.Errorf("invalid format: %s (must be json or geojson)", f)
	}
	return nil
}

func runExtract(ctx context.Context, stdout io.Writer, cfg config.Config, path string, opts *extractOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := extractor.ReadFile(path, cfg.MaxInputBytes)
	if err != nil {
		return err
	}
	ex := extractor.New(cfg,
		extractor.WithHooks(extractor.NewLogHooks(logger)),
		extractor.WithRegionSpec(opts.region))

	var (
		res    *extractor.ExtractionResult
		raster *image.NRGBA
	)
	if opts.mask {
		// A hand-edited mask goes straight to contour tracing.
		if raster, err = ex.Raster(ctx, data, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res = ex.ExtractMask(ctx, imaging.MaskFromImage(raster))
		if err := ctx.Err(); err != nil {
			return err
		}
	} else if res, err = ex.Extract(ctx, data, path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out, err := encodeResult(res, opts.format)
	if err != nil {
		return err
	}
	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return err
		}
		logger.Info("Wrote result", "path", opts.output)
	} else if _, err := stdout.Write(out); err != nil {
		return err
	}

	if opts.overlay != "" {
		if raster == nil {
			if raster, err = ex.Raster(ctx, data, path); err != nil {
				return err
			}
		}
		ov := export.DefaultOverlayOptions()
		ov.GridSpacing = opts.grid
		ov.GridLabels = opts.grid > 0
		if err := export.SaveOverlayPNG(opts.overlay, raster, res, ov); err != nil {
			return err
		}
		logger.Info("Wrote overlay", "path", opts.overlay)
	}

	prog.done(fmt.Sprintf("Extracted %d bordes_externos, %d sublotes", res.TotalBorders, res.TotalSublots))
	return nil
}

// encodeResult renders res in the given format with a trailing newline.
func encodeResult(res *extractor.ExtractionResult, format string) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if format == formatGeoJSON {
		out, err = export.GeoJSON(res)
	} else {
		out, err = json.MarshalIndent(res, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return append(out, '\n'), nil
}
