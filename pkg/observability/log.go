package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// error level. It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks logging to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnGenerateStart(_ context.Context, diagramType string, classes int) {
	h.logger.Debug("generate start", "type", diagramType, "classes", classes)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, diagramType string, s GenerateStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("generate failed", "type", diagramType, "err", err)
		return
	}
	h.logger.Debug("generate complete", "type", diagramType,
		"nodes", s.Nodes, "edges", s.Edges, "clusters", s.Clusters, "warnings", s.Warnings,
		"duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render complete", "format", format, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, requestID, method, route string) {
	h.logger.Debug("request", "id", requestID, "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, requestID, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "id", requestID, "method", method, "route", route,
		"status", status, "duration", d.Round(time.Millisecond))
}
