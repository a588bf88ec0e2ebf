package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"buildboard/internal/backend/gsheets"
	"buildboard/internal/backend/smartsheet"
	"buildboard/internal/commands"
	"buildboard/internal/config"
	"buildboard/internal/metrics"
	"buildboard/internal/roster"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

var (
	// ErrNotConfigured is returned when a sheet, scheme or credential needed
	// to reach the store is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrNoScheme is returned with a partial workspace when the task scheme
	// file is missing. The workspace has sheets and a roster but no codec.
	ErrNoScheme = fmt.Errorf("%w: no scheme file", ErrNotConfigured)
)

// NewWorkspace opens the configured backend, schemes and roster.
func NewWorkspace(ctx context.Context, cfg *config.Config) (*commands.Workspace, error) {
	env := cfg.Env.StoreEnv
	if env.TaskSheet == "" {
		return nil, fmt.Errorf("%w: set BUILDBOARD_TASK_SHEET", ErrNotConfigured)
	}

	var (
		sheets        service.Sheets
		taskScheme    sheet.Scheme
		metricsScheme sheet.Scheme
		schemeErr     error
		err           error
	)
	switch env.Backend {
	case config.BackendGSheets:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w: oauth_client.json not found in %s", ErrNotConfigured, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, fmt.Errorf("%w: not logged in (run: buildboard login)", ErrNotConfigured)
		}
		// Tabs are addressed by position unless a scheme file says otherwise.
		if taskScheme, err = optionalScheme(cfg.SchemePath(), "tasks", sheet.TaskFields()); err != nil {
			return nil, err
		}
		if env.MetricsSheet != "" {
			if metricsScheme, err = optionalScheme(cfg.MetricsSchemePath(), "metrics", metrics.Fields()); err != nil {
				return nil, err
			}
		}
		for _, s := range []sheet.Scheme{taskScheme, metricsScheme} {
			if err := gsheets.CheckScheme(s); err != nil {
				return nil, err
			}
		}

		svc, err := gsheets.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if sheets.Tasks, err = gsheets.New(svc, env.TaskSheet, env.TaskTab); err != nil {
			return nil, err
		}
		if env.MetricsSheet != "" {
			if sheets.Metrics, err = gsheets.New(svc, env.MetricsSheet, env.MetricsTab); err != nil {
				return nil, err
			}
		}

	default:
		if sheets.Tasks, err = smartsheet.New(ctx, env.BaseURL, env.APIToken, env.TaskSheet); err != nil {
			return nil, err
		}
		if env.MetricsSheet != "" {
			if sheets.Metrics, err = smartsheet.New(ctx, env.BaseURL, env.APIToken, env.MetricsSheet); err != nil {
				return nil, err
			}
			if metricsScheme, err = requiredScheme(cfg.MetricsSchemePath()); err != nil {
				return nil, err
			}
		}
		taskScheme, schemeErr = requiredScheme(cfg.SchemePath())
		if schemeErr != nil && !errors.Is(schemeErr, ErrNoScheme) {
			return nil, schemeErr
		}
	}

	r, err := roster.Load(cfg.RosterPath())
	if err != nil {
		return nil, err
	}
	ws := &commands.Workspace{
		Sheets:        sheets,
		MetricsScheme: metricsScheme,
		Roster:        r,
	}
	if schemeErr != nil {
		return ws, schemeErr
	}
	if ws.Codec, err = sheet.NewCodec(taskScheme); err != nil {
		return nil, err
	}
	return ws, nil
}

// requiredScheme loads a scheme that must exist.
func requiredScheme(path string) (sheet.Scheme, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return sheet.Scheme{}, fmt.Errorf("%w: %s not found (run: buildboard columns --scheme)", ErrNoScheme, path)
	}
	return sheet.LoadScheme(path)
}

// optionalScheme loads path when it exists and falls back to a positional
// scheme over fields. A file that exists but does not load is an error.
func optionalScheme(path, name string, fields []string) (sheet.Scheme, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return sheet.PositionalScheme(name, fields), nil
	}
	s, err := sheet.LoadScheme(path)
	if err != nil {
		return sheet.Scheme{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
