package extractor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/planvec/internal/vectorize"
)

// Stage names a pipeline step.
type Stage string

const (
	StageDecode     Stage = "decode"
	StagePreprocess Stage = "preprocess"
	StageContours   Stage = "contours"
	StageClassify   Stage = "classify"
	StageUnify      Stage = "unify"
	StageMerge      Stage = "merge"
	StageSimplify   Stage = "simplify"
)

// List names one of the two polygon lists a run produces.
type List string

const (
	ListBorders List = "bordes_externos"
	ListSublots List = "sublotes"
)

// StageEvent reports a finished stage.
type StageEvent struct {
	RunID    string
	Stage    Stage
	Duration time.Duration

	// Items is the number of contours or polygons the stage produced.
	Items int
}

// Hooks receives pipeline events. Implementations must not retain the stats
// values beyond the call. Every method is called from the goroutine running
// the extraction.
type Hooks interface {
	OnStage(ctx context.Context, e StageEvent)
	OnClusters(ctx context.Context, runID string, list List, stats vectorize.UnifyStats)
	OnContourDropped(ctx context.Context, runID string, list List, d vectorize.DroppedContour)
	OnEndpointsMerged(ctx context.Context, runID string, stats vectorize.MergeStats)
	OnItemSkipped(ctx context.Context, runID string, stage Stage, item vectorize.SkippedItem)
}

// NoopHooks ignores every event.
type NoopHooks struct{}

func (NoopHooks) OnStage(context.Context, StageEvent) {}
func (NoopHooks) OnClusters(context.Context, string, List, vectorize.UnifyStats) {}
func (NoopHooks) OnContourDropped(context.Context, string, List, vectorize.DroppedContour) {}
func (NoopHooks) OnEndpointsMerged(context.Context, string, vectorize.MergeStats) {}
func (NoopHooks) OnItemSkipped(context.Context, string, Stage, vectorize.SkippedItem) {}

// LogHooks writes events as structured log lines. Stage timings and cluster
// statistics go to the debug level; skipped items are warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns LogHooks writing to l, or to log.Default() when l is
// nil.
func NewLogHooks(l *log.Logger) LogHooks {
	if l == nil {
		l = log.Default()
	}
	return LogHooks{Logger: l}
}

func (h LogHooks) OnStage(_ context.Context, e StageEvent) {
	h.Logger.Debug("stage finished",
		"run_id", e.RunID,
		"stage", e.Stage,
		"items", e.Items,
		"duration", e.Duration.Round(time.Microsecond))
}

func (h LogHooks) OnClusters(_ context.Context, runID string, list List, stats vectorize.UnifyStats) {
	h.Logger.Debug("unified points",
		"run_id", runID,
		"list", list,
		"merge_distance", stats.MergeDistance,
		"passes", stats.Passes,
		"clusters", stats.Clusters,
		"dropped", len(stats.Dropped))
}

func (h LogHooks) OnContourDropped(_ context.Context, runID string, list List, d vectorize.DroppedContour) {
	h.Logger.Debug("dropped degenerate contour",
		"run_id", runID,
		"list", list,
		"pass", d.Pass,
		"index", d.Index,
		"vertices", d.Vertices,
		"length", d.Length)
}

func (h LogHooks) OnEndpointsMerged(_ context.Context, runID string, stats vectorize.MergeStats) {
	h.Logger.Debug("merged endpoints",
		"run_id", runID,
		"merge_distance", stats.MergeDistance,
		"candidates", stats.Candidates,
		"merged", stats.Merged)
}

func (h LogHooks) OnItemSkipped(_ context.Context, runID string, stage Stage, item vectorize.SkippedItem) {
	h.Logger.Warn("skipped item",
		"run_id", runID,
		"stage", stage,
		"index", item.Index,
		"err", item.Err)
}
