package internal

import (
	"context"

	"github.com/wagoodman/go-progress"
)

const (
	StageResolving   = "resolving"
	StageDownloading = "downloading"
	StageExtracting  = "extracting"
	StageInstalled   = "installed"
)

// Monitor is the staged progress of a single part installation.
type Monitor struct {
	*progress.Manual
	stage string
}

var _ progress.StagedProgressable = (*Monitor)(nil)

func NewMonitor() *Monitor {
	return &Monitor{
		Manual: progress.NewManual(-1),
	}
}

func (m *Monitor) Stage() string {
	if m == nil {
		return ""
	}
	return m.stage
}

// SetStage is a no-op on a nil monitor.
func (m *Monitor) SetStage(stage string) {
	if m == nil {
		return
	}
	m.stage = stage
}

type monitorKey struct{}

func WithMonitor(ctx context.Context, m *Monitor) context.Context {
	return context.WithValue(ctx, monitorKey{}, m)
}

// MonitorFromContext returns the monitor on the context, or nil.
func MonitorFromContext(ctx context.Context) *Monitor {
	if m, ok := ctx.Value(monitorKey{}).(*Monitor); ok {
		return m
	}
	return nil
}
