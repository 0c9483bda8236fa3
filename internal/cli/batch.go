package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/extractor"
)

// batchOpts holds the flags of the batch command.
type batchOpts struct {
	outDir string // directory receiving one result per input
	format string // json or geojson
	jobs   int    // concurrent extractions
}

func newBatchCmd(a *app) *cobra.Command {
	opts := batchOpts{outDir: ".", format: formatJSON, jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Vectorize many plans concurrently",
		Long: `Vectorize every given plan and write <name>.json (or <name>.geojson) into
--out-dir. A plan that fails is logged and the others continue; the command
exits with an error if any plan failed. Inputs that would write the same result
file, such as a/plan.png and b/plan.pdf, are rejected before any work starts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if opts.jobs < 1 {
				return fmt.Errorf("invalid jobs: %d (must be >= 1)", opts.jobs)
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cfg, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", opts.outDir, "output directory")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, geojson")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of plans processed at once")

	return cmd
}

func runBatch(ctx context.Context, cfg config.Config, paths []string, opts *batchOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	outputs, err := resultPaths(opts.outDir, paths, opts.format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	ex := extractor.New(cfg, extractor.WithHooks(extractor.NewLogHooks(logger)))

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := outputs[i]
			err := extractOne(gctx, ex, cfg, path, out, opts.format)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				logger.Error("plan failed", "path", path, "err", err)
				return nil
			}
			logger.Debug("wrote result", "path", out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	n := int(failed.Load())
	prog.done(fmt.Sprintf("Vectorized %d of %d plans", len(paths)-n, len(paths)))
	if n > 0 {
		return fmt.Errorf("%d of %d plans failed", n, len(paths))
	}
	return nil
}

// extractOne vectorizes path and writes the encoded result to dst.
func extractOne(ctx context.Context, ex *extractor.Extractor, cfg config.Config, path, dst, format string) error {
	data, err := extractor.ReadFile(path, cfg.MaxInputBytes)
	if err != nil {
		return err
	}
	res, err := ex.Extract(ctx, data, path)
	if err != nil {
		return err
	}
	out, err := encodeResult(res, format)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, out, 0o644)
}

// resultPaths assigns every input its output file. Two inputs that would
// write the same file, such as a/plan.png and b/plan.pdf, are an error
// reported before any plan is processed.
func resultPaths(dir string, inputs []string, format string) ([]string, error) {
	out := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		p := resultPath(dir, in, format)
		if prev, ok := seen[p]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, p)
		}
		seen[p] = in
		out[i] = p
	}
	return out, nil
}

// resultPath maps plans/lot-12.pdf to <dir>/lot-12.json.
func resultPath(dir, input, format string) string {
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"."+format)
}
