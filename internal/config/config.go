package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Import
		Audit
		Tasks
		Cleanup
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Import struct {
		DateFormat        string // Go time layout for the published_date column
		CategorySeparator string
		DeleteColumn      string
		DeleteSentinel    string
		EpochFloor        string   // earliest accepted publication date, same layout as DateFormat
		DeniedNames       []string // book names rejected outright
	}
	Audit struct {
		Dir string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Cleanup struct {
		Enabled          bool
		Schedule         string // Cron format: "0 * * * *" = hourly
		SessionRetention time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")

	// Import defaults
	v.SetDefault("import_date_format", DefaultDateFormat)
	v.SetDefault("import_category_separator", DefaultCategorySeparator)
	v.SetDefault("import_delete_column", DefaultDeleteColumn)
	v.SetDefault("import_delete_sentinel", DefaultDeleteSentinel)
	v.SetDefault("import_epoch_floor", DefaultEpochFloor)
	v.SetDefault("import_denied_names", []string{"Ulysses"})

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Session cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("cleanup_session_retention", "720h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Import: Import{
			DateFormat:        v.GetString("IMPORT_DATE_FORMAT"),
			CategorySeparator: v.GetString("IMPORT_CATEGORY_SEPARATOR"),
			DeleteColumn:      v.GetString("IMPORT_DELETE_COLUMN"),
			DeleteSentinel:    v.GetString("IMPORT_DELETE_SENTINEL"),
			EpochFloor:        v.GetString("IMPORT_EPOCH_FLOOR"),
			DeniedNames:       v.GetStringSlice("IMPORT_DENIED_NAMES"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Cleanup: Cleanup{
			Enabled:          v.GetBool("CLEANUP_ENABLED"),
			Schedule:         v.GetString("CLEANUP_SCHEDULE"),
			SessionRetention: v.GetDuration("CLEANUP_SESSION_RETENTION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
