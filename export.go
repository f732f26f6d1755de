package mixmaster

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ExportGate is the export-eligibility check kept outside the engine, such
// as a plan quota. ConsumeExport returns nil when one export may proceed and
// has been counted.
type ExportGate interface {
	ConsumeExport(ctx context.Context) error
}

// AdminOverride is a gate that always allows, for administrative sessions
// that bypass the quota.
type AdminOverride struct{}

// ConsumeExport always succeeds.
func (AdminOverride) ConsumeExport(context.Context) error { return nil }

// GateFunc adapts a function to ExportGate.
type GateFunc func(ctx context.Context) error

// ConsumeExport calls f.
func (f GateFunc) ConsumeExport(ctx context.Context) error { return f(ctx) }

// Exporter renders, checks the gate, encodes and saves, in that order. A nil
// Gate refuses every export; AdminOverride bypasses the check.
type Exporter struct {
	Gate   ExportGate
	Saver  Saver
	Logger *zap.Logger
}

// Export renders buf with params and saves it as MixedFilename(title). It
// returns the name it saved under. The gate is consulted only after a
// successful render; a refusal wraps ErrExportDenied and nothing is saved.
// An Exporter without a Saver refuses before rendering or consuming quota.
func (e *Exporter) Export(ctx context.Context, buf *Buffer, params Params, title string) (string, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if e.Saver == nil {
		return "", fmt.Errorf("%w: no saver configured", ErrExportDenied)
	}

	rendered, err := RenderOffline(buf, params)
	if err != nil {
		return "", err
	}

	if e.Gate == nil {
		return "", fmt.Errorf("%w: no export gate configured", ErrExportDenied)
	}
	if err := e.Gate.ConsumeExport(ctx); err != nil {
		logger.Info("export refused", zap.String("title", title), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrExportDenied, err)
	}

	var encoded bytes.Buffer
	if err := WriteWAV(&encoded, rendered); err != nil {
		return "", err
	}

	name := MixedFilename(title)
	if err := SaveAs(e.Saver, encoded.Bytes(), name); err != nil {
		return "", err
	}

	logger.Info("export saved",
		zap.String("file", name),
		zap.Stringer("params", params),
		zap.Duration("duration", rendered.Duration()))
	return name, nil
}

// ExportSnapshot exports whatever the monitor currently has loaded, using
// its current params.
func (e *Exporter) ExportSnapshot(ctx context.Context, m *Monitor, title string) (string, error) {
	buf, params, err := m.Snapshot()
	if err != nil {
		return "", err
	}
	return e.Export(ctx, buf, params, title)
}
