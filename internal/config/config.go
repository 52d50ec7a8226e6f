package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/library/internal/scheduler"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Snapshot
		Tasks
		Reconcile
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Backend string // "gorm" (default) or "sqlx"
		Dialect string // sqlx only: "sqlite3" or "postgres"
		Path    string // sqlite file, also anchors the tasks database
		DSN     string // sqlx postgres connection string
	}
	Snapshot struct {
		Path        string
		Format      string // "csv" or "json"
		SyncOnStart bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Audit struct {
		Enabled       bool
		RetentionDays int // Days to keep audit events, 0 keeps everything
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_backend", BackendGorm)
	v.SetDefault("database_dialect", "sqlite3")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("snapshot_path", DefaultSnapshotPath)
	v.SetDefault("snapshot_format", "csv")
	v.SetDefault("snapshot_sync_on_start", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("reconcile_enabled", false)
	v.SetDefault("reconcile_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Backend: v.GetString("DATABASE_BACKEND"),
			Dialect: v.GetString("DATABASE_DIALECT"),
			Path:    v.GetString("DATABASE_PATH"),
			DSN:     v.GetString("DATABASE_DSN"),
		},
		Snapshot: Snapshot{
			Path:        v.GetString("SNAPSHOT_PATH"),
			Format:      v.GetString("SNAPSHOT_FORMAT"),
			SyncOnStart: v.GetBool("SNAPSHOT_SYNC_ON_START"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}
}

// Validate rejects combinations the entrypoint cannot wire.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case BackendGorm:
	case BackendSQLX:
		if c.Database.Dialect == "postgres" && c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres dialect")
		}
	default:
		return fmt.Errorf("unknown database backend %q", c.Database.Backend)
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("SNAPSHOT_PATH must not be empty")
	}
	if c.Reconcile.Enabled {
		if err := scheduler.ValidateSchedule(c.Reconcile.Schedule); err != nil {
			return fmt.Errorf("invalid RECONCILE_SCHEDULE %q: %w", c.Reconcile.Schedule, err)
		}
	}
	return nil
}

// DatabaseDSN returns the connection string for the sqlx backend.
func (c *Config) DatabaseDSN() string {
	if c.Database.Dialect == "postgres" {
		return c.Database.DSN
	}
	return c.Database.Path
}
