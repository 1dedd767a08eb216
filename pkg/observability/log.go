package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes one debug line per pipeline stage.
type LogPipelineHooks struct {
	Logger *log.Logger
}

// NewLogPipelineHooks returns hooks that log to l, or to the default
// logger when l is nil.
func NewLogPipelineHooks(l *log.Logger) *LogPipelineHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogPipelineHooks{Logger: l}
}

func (h *LogPipelineHooks) OnFetchStart(_ context.Context, bbox string) {
	h.Logger.Debug("fetch started", "bbox", bbox)
}

func (h *LogPipelineHooks) OnFetchComplete(_ context.Context, bbox string, nodeCount, edgeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("fetch failed", "bbox", bbox, "took", d, "err", err)
		return
	}
	h.Logger.Debug("fetch done", "bbox", bbox, "nodes", nodeCount, "edges", edgeCount, "took", d)
}

func (h *LogPipelineHooks) OnWeightStart(_ context.Context, nodeCount, edgeCount int) {
	h.Logger.Debug("weighting", "nodes", nodeCount, "edges", edgeCount)
}

func (h *LogPipelineHooks) OnWeightComplete(_ context.Context, maxDistance float64, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("weighting failed", "took", d, "err", err)
		return
	}
	h.Logger.Debug("weighted", "max_distance_km", maxDistance, "took", d)
}

func (h *LogPipelineHooks) OnCollapseStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("collapsing", "nodes", nodeCount)
}

func (h *LogPipelineHooks) OnCollapseComplete(_ context.Context, collapsed, passes int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("collapse failed", "took", d, "err", err)
		return
	}
	h.Logger.Debug("collapsed", "removed", collapsed, "passes", passes, "took", d)
}

var _ PipelineHooks = (*LogPipelineHooks)(nil)
