package core

import (
	"fmt"
	"strings"

	"github.com/namastexlabs/genie/pkg/models"
	"github.com/spf13/viper"
)

// ConfigManager loads and validates the store configuration from .genierc.
type ConfigManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigManager using Viper for reading the
// YAML configuration file.
type viperConfigManager struct {
	// basePath is the store root directory where .genierc resides.
	basePath string
}

// NewConfigManager creates a ConfigManager that reads .genierc from basePath.
func NewConfigManager(basePath string) ConfigManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		WishesDir:       "genie/wishes",
		TaskIDPadWidth:  3,
		DefaultAssigned: "",
		DefaultStatus:   "DRAFT",
		Notifications: models.NotificationConfig{
			Alerts: models.AlertConfig{
				StaleDays:      3,
				ReviewDays:     5,
				MaxBacklogSize: 10,
			},
		},
	}
}

// Load reads .genierc from the base path. If the file does not exist,
// defaults are returned.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".genierc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("wishes_dir", cfg.WishesDir)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("defaults.assigned", cfg.DefaultAssigned)
	v.SetDefault("defaults.status", cfg.DefaultStatus)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.alerts.stale_threshold_days", cfg.Notifications.Alerts.StaleDays)
	v.SetDefault("notifications.alerts.review_threshold_days", cfg.Notifications.Alerts.ReviewDays)
	v.SetDefault("notifications.alerts.max_backlog_size", cfg.Notifications.Alerts.MaxBacklogSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .genierc: %w", err)
	}

	cfg.WishesDir = v.GetString("wishes_dir")
	cfg.DefaultAssigned = v.GetString("defaults.assigned")
	cfg.DefaultStatus = v.GetString("defaults.status")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")
	cfg.Notifications.Alerts.StaleDays = v.GetInt("notifications.alerts.stale_threshold_days")
	cfg.Notifications.Alerts.ReviewDays = v.GetInt("notifications.alerts.review_threshold_days")
	cfg.Notifications.Alerts.MaxBacklogSize = v.GetInt("notifications.alerts.max_backlog_size")

	// Use IsSet to distinguish "not set" (use default 3) from "explicitly set to 0".
	if v.IsSet("task_id.pad_width") {
		cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values and returns a clear
// error message identifying every problem found.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.WishesDir == "" {
		errs = append(errs, "wishes_dir must not be empty")
	}
	if strings.HasPrefix(cfg.WishesDir, "/") || strings.HasPrefix(cfg.WishesDir, "..") {
		errs = append(errs, fmt.Sprintf("wishes_dir %q must be a relative path inside the store root", cfg.WishesDir))
	}

	if cfg.TaskIDPadWidth < 1 || cfg.TaskIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"task_id.pad_width %d is invalid, must be between 1 and 10",
			cfg.TaskIDPadWidth,
		))
	}

	alerts := cfg.Notifications.Alerts
	if alerts.StaleDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stale_threshold_days must be non-negative, got %d", alerts.StaleDays))
	}
	if alerts.ReviewDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.review_threshold_days must be non-negative, got %d", alerts.ReviewDays))
	}
	if alerts.MaxBacklogSize < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_backlog_size must be non-negative, got %d", alerts.MaxBacklogSize))
	}

	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		errs = append(errs, "notifications.enabled requires notifications.webhook_url")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
