package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/planvec/internal/config"
)

var (
	version = "dev"     // semantic version
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version and
// reported by the MCP server. main calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the planvec CLI.
//
// Logging goes to stderr at info level, debug with --verbose (-v) or the
// level named by PLANVEC_LOG_LEVEL. The logger travels in the command
// context; see loggerFromContext.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// app holds the flags shared by every command.
type app struct {
	configPath string
	verbose    bool

	// flags receives the per-option flag values. Only flags the user set
	// are copied onto the loaded configuration.
	flags config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{flags: config.Default()}

	root := &cobra.Command{
		Use:   "planvec",
		Short: "planvec turns scanned land-survey plans into polygons",
		Long: `planvec vectorizes raster or PDF land-survey plans. It detects the outer plot
boundaries (bordes_externos) and the sub-lots inside them (sublotes), snaps
nearby vertices together and simplifies the result into clean polygons.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := newLogger(cmd.ErrOrStderr(), resolveLevel(a.verbose))
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("planvec %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&a.configPath, "config", "c", "", "configuration file (.toml, .yaml, .json)")

	pf.IntVar(&a.flags.Blur, "blur", a.flags.Blur, "Gaussian kernel size (odd)")
	pf.Float64Var(&a.flags.CannyLow, "canny-low", a.flags.CannyLow, "edge detector low threshold")
	pf.Float64Var(&a.flags.CannyHigh, "canny-high", a.flags.CannyHigh, "edge detector high threshold")
	pf.IntVar(&a.flags.MorphKernel, "morph-kernel", a.flags.MorphKernel, "closing kernel size in pixels")
	pf.Float64Var(&a.flags.MinContourArea, "min-contour-area", a.flags.MinContourArea, "discard contours at or below this area")
	pf.Float64Var(&a.flags.Epsilon, "epsilon", a.flags.Epsilon, "simplification tolerance in pixels")
	pf.Float64Var(&a.flags.MinSublotArea, "min-sublot-area", a.flags.MinSublotArea, "smallest accepted sublot area")
	pf.Float64Var(&a.flags.MinAngle, "min-angle", a.flags.MinAngle, "smallest accepted sublot angle in degrees")
	pf.Float64Var(&a.flags.MergeDistancePercent, "merge-distance-percent", a.flags.MergeDistancePercent, "point unification radius as a fraction of the diagonal")
	pf.Float64Var(&a.flags.BorderMergePercent, "border-merge-percent", a.flags.BorderMergePercent, "border endpoint stitching radius as a fraction of the diagonal")
	pf.Float64Var(&a.flags.CLAHEClipLimit, "clahe-clip-limit", a.flags.CLAHEClipLimit, "local equalization contrast limit")
	pf.IntVar(&a.flags.CLAHETileGrid, "clahe-tile-grid", a.flags.CLAHETileGrid, "local equalization tiles per axis")
	pf.IntVar(&a.flags.DPI, "dpi", a.flags.DPI, "PDF rasterization resolution")
	pf.Int64Var(&a.flags.MaxInputBytes, "max-input-bytes", a.flags.MaxInputBytes, "reject inputs larger than this (0 disables)")

	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newMaskCmd(a))
	root.AddCommand(newOverlayCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// optionFlags maps each per-option flag to the field it overrides.
var optionFlags = []struct {
	name string
	copy func(dst *config.Config, src config.Config)
}{
	{"blur", func(d *config.Config, s config.Config) { d.Blur = s.Blur }},
	{"canny-low", func(d *config.Config, s config.Config) { d.CannyLow = s.CannyLow }},
	{"canny-high", func(d *config.Config, s config.Config) { d.CannyHigh = s.CannyHigh }},
	{"morph-kernel", func(d *config.Config, s config.Config) { d.MorphKernel = s.MorphKernel }},
	{"min-contour-area", func(d *config.Config, s config.Config) { d.MinContourArea = s.MinContourArea }},
	{"epsilon", func(d *config.Config, s config.Config) { d.Epsilon = s.Epsilon }},
	{"min-sublot-area", func(d *config.Config, s config.Config) { d.MinSublotArea = s.MinSublotArea }},
	{"min-angle", func(d *config.Config, s config.Config) { d.MinAngle = s.MinAngle }},
	{"merge-distance-percent", func(d *config.Config, s config.Config) { d.MergeDistancePercent = s.MergeDistancePercent }},
	{"border-merge-percent", func(d *config.Config, s config.Config) { d.BorderMergePercent = s.BorderMergePercent }},
	{"clahe-clip-limit", func(d *config.Config, s config.Config) { d.CLAHEClipLimit = s.CLAHEClipLimit }},
	{"clahe-tile-grid", func(d *config.Config, s config.Config) { d.CLAHETileGrid = s.CLAHETileGrid }},
	{"dpi", func(d *config.Config, s config.Config) { d.DPI = s.DPI }},
	{"max-input-bytes", func(d *config.Config, s config.Config) { d.MaxInputBytes = s.MaxInputBytes }},
}

// loadConfig builds the effective configuration: defaults, then the
// --config file, then any option flag set on the command line.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFromPath(a.configPath); err != nil {
			return config.Config{}, err
		}
	}
	for _, o := range optionFlags {
		if f := cmd.Flag(o.name); f != nil && f.Changed {
			o.copy(&cfg, a.flags)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
