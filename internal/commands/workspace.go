package commands

import (
	"errors"
	"log/slog"
	"time"

	"buildboard/internal/metrics"
	"buildboard/internal/notify"
	"buildboard/internal/repository"
	"buildboard/internal/roster"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

// ErrNoMetricsSheet is returned when metrics are used without a metrics sheet.
var ErrNoMetricsSheet = errors.New("no metrics sheet configured (set BUILDBOARD_METRICS_SHEET)")

// Workspace is everything a store-backed command works with.
type Workspace struct {
	Sheets        service.Sheets
	Codec         *sheet.Codec
	MetricsScheme sheet.Scheme
	Roster        *roster.Roster
	Notifier      notify.Notifier
	Logger        *slog.Logger

	// Now is the clock for report figures. Defaults to time.Now.
	Now func() time.Time
}

// Tasks returns a repository over the task sheet.
func (w *Workspace) Tasks() *repository.Repository {
	return repository.New(w.Sheets.Tasks, w.Codec,
		repository.WithNotifier(w.notifier()),
		repository.WithLogger(w.logger()),
	)
}

// Metrics returns a store over the metrics sheet.
func (w *Workspace) Metrics() (*metrics.Store, error) {
	if w.Sheets.Metrics == nil {
		return nil, ErrNoMetricsSheet
	}
	return metrics.NewStore(w.Sheets.Metrics, w.MetricsScheme,
		metrics.WithNotifier(w.notifier()),
		metrics.WithLogger(w.logger()),
	)
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Workspace) notifier() notify.Notifier {
	if w.Notifier == nil {
		return notify.Discard
	}
	return w.Notifier
}

func (w *Workspace) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
