package models

// AlertConfig holds the thresholds for the alert engine, read from the
// notifications.alerts section of .genierc.
type AlertConfig struct {
	StaleDays      int `yaml:"stale_threshold_days" mapstructure:"stale_threshold_days"`
	ReviewDays     int `yaml:"review_threshold_days" mapstructure:"review_threshold_days"`
	MaxBacklogSize int `yaml:"max_backlog_size" mapstructure:"max_backlog_size"`
}

// NotificationConfig holds notification settings from .genierc.
type NotificationConfig struct {
	Enabled    bool        `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL string      `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
	Alerts     AlertConfig `yaml:"alerts,omitempty" mapstructure:"alerts"`
}

// Config holds store-wide settings read from .genierc via Viper.
type Config struct {
	// WishesDir is the directory under the store root that holds the four
	// stage directories. Defaults to "genie/wishes".
	WishesDir string `yaml:"wishes_dir" mapstructure:"wishes_dir"`

	// TaskIDPadWidth is the zero-padding width of task card ids
	// (3 produces task-001).
	TaskIDPadWidth int `yaml:"task_id_pad_width" mapstructure:"task_id_pad_width"`

	// DefaultAssigned is the specialist name stamped on new task cards when
	// the caller does not name one.
	DefaultAssigned string `yaml:"default_assigned" mapstructure:"default_assigned"`

	// DefaultStatus is the free-text status line seeded into new wish.md
	// documents.
	DefaultStatus string `yaml:"default_status" mapstructure:"default_status"`

	Notifications NotificationConfig `yaml:"notifications,omitempty" mapstructure:"notifications"`
}
