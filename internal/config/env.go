package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	BackendSmartsheet = "smartsheet"
	BackendGSheets    = "gsheets"
)

// Export storage types.
const (
	ExportLocal = "local"
	ExportS3    = "s3"
)

type BaseEnv struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
}

type StoreEnv struct {
	Backend string `envconfig:"BACKEND" default:"smartsheet"`
	// BaseURL is the REST root. Point it at a credential-injecting proxy and
	// leave APIToken empty to keep the token out of this process.
	BaseURL           string `envconfig:"BASE_URL" default:"https://api.smartsheet.com/2.0"`
	APIToken          string `envconfig:"API_TOKEN"`
	TaskSheet         string `envconfig:"TASK_SHEET"`
	MetricsSheet      string `envconfig:"METRICS_SHEET"`
	TaskTab           string `envconfig:"TASK_TAB" default:"Tasks"`
	MetricsTab        string `envconfig:"METRICS_TAB" default:"Metrics"`
	SchemeFile        string `envconfig:"SCHEME_FILE"`
	MetricsSchemeFile string `envconfig:"METRICS_SCHEME_FILE"`
}

type ExportEnv struct {
	Type    string `envconfig:"EXPORT_TYPE" default:"local"`
	BaseDir string `envconfig:"EXPORT_DIR" default:"exports"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"buildboard/"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type Env struct {
	BaseEnv
	StoreEnv
	ExportEnv
}

const namespace = "BUILDBOARD"

// LoadEnv reads BUILDBOARD_* variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	switch env.Backend {
	case BackendSmartsheet, BackendGSheets:
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", env.Backend, BackendSmartsheet, BackendGSheets)
	}
	switch env.ExportEnv.Type {
	case ExportLocal, ExportS3:
	default:
		return nil, fmt.Errorf("unknown export type %q (want %s or %s)", env.ExportEnv.Type, ExportLocal, ExportS3)
	}
	return &env, nil
}

// SlogLevel parses LogLevel, falling back to info.
func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// HTTPAddr is the listen address of the JSON API.
func (e *BaseEnv) HTTPAddr() string {
	return e.HTTPHost + ":" + e.HTTPPort
}
