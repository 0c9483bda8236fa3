package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/export"
	"github.com/ironsheep/planvec/internal/extractor"
)

// overlayOpts holds the flags of the overlay command.
type overlayOpts struct {
	output   string
	grid     int
	vertices bool
}

func newOverlayCmd(a *app) *cobra.Command {
	opts := overlayOpts{vertices: true}

	cmd := &cobra.Command{
		Use:   "overlay [plan] [vectors.geojson]",
		Short: "Draw saved polygons over a plan",
		Long: `Draw the polygons of a GeoJSON file written by "extract --format geojson"
over the plan they came from, so results can be reviewed or hand-edited and
re-checked without running the extraction again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.grid < 0 {
				return fmt.Errorf("invalid grid: %d (must be >= 0)", opts.grid)
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runOverlay(cmd.Context(), cfg, args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PNG file to write (required)")
	cmd.Flags().IntVar(&opts.grid, "grid", 0, "grid spacing in pixels, 0 for none")
	cmd.Flags().BoolVar(&opts.vertices, "vertices", opts.vertices, "mark polygon vertices")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runOverlay(ctx context.Context, cfg config.Config, planPath, vectorsPath string, opts *overlayOpts) error {
	logger := loggerFromContext(ctx)

	vectors, err := os.ReadFile(vectorsPath)
	if err != nil {
		return err
	}
	res, err := export.ParseGeoJSON(vectors)
	if err != nil {
		return fmt.Errorf("%s: %w", vectorsPath, err)
	}

	data, err := extractor.ReadFile(planPath, cfg.MaxInputBytes)
	if err != nil {
		return err
	}
	raster, err := extractor.New(cfg).Raster(ctx, data, planPath)
	if err != nil {
		return fmt.Errorf("%s: %w", planPath, err)
	}
	if res.Width != 0 && (res.Width != raster.Bounds().Dx() || res.Height != raster.Bounds().Dy()) {
		logger.Warn("plan size differs from the extraction",
			"plan", fmt.Sprintf("%dx%d", raster.Bounds().Dx(), raster.Bounds().Dy()),
			"vectors", fmt.Sprintf("%dx%d", res.Width, res.Height))
	}

	ov := export.DefaultOverlayOptions()
	ov.GridSpacing = opts.grid
	ov.GridLabels = opts.grid > 0
	ov.Vertices = opts.vertices
	if err := export.SaveOverlayPNG(opts.output, raster, res, ov); err != nil {
		return err
	}
	logger.Info("Wrote overlay", "path", opts.output, "vectores", res.TotalVectors)
	return nil
}
