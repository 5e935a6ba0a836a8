// Package internal provides the App struct that wires all components of the
// wish store together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/namastexlabs/genie/internal/cli"
	"github.com/namastexlabs/genie/internal/core"
	"github.com/namastexlabs/genie/internal/observability"
	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
)

// App holds all service dependencies for the wish store.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigManager
	Config    *models.Config

	// Storage layer
	Store storage.WishStore
	Cards storage.TaskCardIndex

	// Core services
	Transitions core.TransitionEngine
	Resolver    core.RefResolver

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the wish store. basePath is the
// store root (typically the directory containing .genierc).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		// Use defaults if the config file is unreadable.
		cfg = core.DefaultConfig()
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".genie_events.jsonl")
	app.EventLog = observability.NewJSONLEventLog(eventLogPath)

	thresholds := observability.DefaultAlertThresholds()
	if cfg.Notifications.Alerts.StaleDays > 0 {
		thresholds.StaleDays = cfg.Notifications.Alerts.StaleDays
	}
	if cfg.Notifications.Alerts.ReviewDays > 0 {
		thresholds.ReviewDays = cfg.Notifications.Alerts.ReviewDays
	}
	if cfg.Notifications.Alerts.MaxBacklogSize > 0 {
		thresholds.MaxBacklogSize = cfg.Notifications.Alerts.MaxBacklogSize
	}
	app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
	app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)

	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	}

	// --- Storage layer ---
	evtAdapter := &eventLogAdapter{log: app.EventLog}
	app.Store = storage.NewWishStore(basePath, cfg.WishesDir, evtAdapter)
	app.Cards = storage.NewTaskCardIndex(basePath, cfg.WishesDir, cfg.TaskIDPadWidth, evtAdapter)

	// --- Core services ---
	app.Transitions = core.NewTransitionEngine(app.Store, evtAdapter)
	app.Resolver = core.NewRefResolver(basePath)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = cfg
	cli.Store = app.Store
	cli.Cards = app.Cards
	cli.Transitions = app.Transitions
	cli.Resolver = app.Resolver
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.AlertEngine = app.AlertEngine
	cli.Notifier = app.Notifier

	return app, nil
}

// ResolveBasePath determines the store root: GENIE_HOME if set, otherwise the
// nearest ancestor directory containing .genierc, otherwise the current
// working directory.
func ResolveBasePath() string {
	if home := os.Getenv("GENIE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".genierc")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to the LogEvent interfaces
// the core and storage packages define for themselves.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := "INFO"
	if eventType == "taskcard.skipped_malformed" {
		level = "WARN"
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
