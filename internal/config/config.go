package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/quotatray/quotatray/internal/core/model"
)

const (
	appDirName     = ".quotatray"
	configFileName = "config.json"
)

// Config is the on-disk settings file. Fields absent from the file keep
// their defaults; out-of-range values are clamped on load.
type Config struct {
	Plan                        string  `json:"plan"`
	WindowHours                 float64 `json:"window_hours"`
	WarningThreshold            float64 `json:"warning_threshold"`
	RefreshIntervalSeconds      int     `json:"refresh_interval_seconds"`
	NotificationCooldownMinutes float64 `json:"notification_cooldown_minutes"`
	ClaudeDir                   string  `json:"claude_dir"`
	LogLevel                    string  `json:"log_level"`
}

// Default returns the documented defaults
func Default() Config {
	return Config{
		Plan:                        model.PlanMax5,
		WindowHours:                 5,
		WarningThreshold:            90,
		RefreshIntervalSeconds:      30,
		NotificationCooldownMinutes: 15,
		ClaudeDir:                   "~/.claude/projects",
		LogLevel:                    "info",
	}
}

// DefaultPath returns the per-user config location, ~/.quotatray/config.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, appDirName, configFileName), nil
}

// DefaultLogFile returns the default application log location
func DefaultLogFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, appDirName, "logs", "quotatray.log"), nil
}

// Load reads the config file at path. A missing file yields the defaults
// with no error. An unreadable or malformed file also yields the defaults,
// with the error returned so the caller can log it; a malformed file is
// additionally moved aside so a later Save cannot silently destroy whatever
// the user had written.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		backup := path + ".invalid"
		if renameErr := os.Rename(path, backup); renameErr == nil {
			return Default(), fmt.Errorf("parse config %s (moved to %s): %w", path, backup, err)
		}
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory as needed
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := sonic.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// normalize clamps out-of-range values back to sane ones
func (c *Config) normalize() {
	if _, ok := model.FindPlan(c.Plan); !ok {
		c.Plan = model.PlanMax5
	}
	if c.WindowHours <= 0 {
		c.WindowHours = 5
	}
	if c.WarningThreshold <= 0 || c.WarningThreshold > 100 {
		c.WarningThreshold = 90
	}
	if c.RefreshIntervalSeconds <= 0 {
		c.RefreshIntervalSeconds = 30
	} else if c.RefreshIntervalSeconds < 5 {
		c.RefreshIntervalSeconds = 5
	}
	if c.NotificationCooldownMinutes < 0 {
		c.NotificationCooldownMinutes = 15
	}
	if c.ClaudeDir == "" {
		c.ClaudeDir = "~/.claude/projects"
	}
}

// WindowConfig converts the file values into the aggregation parameters
func (c Config) WindowConfig() model.WindowConfig {
	return model.WindowConfig{
		Duration:             time.Duration(c.WindowHours * float64(time.Hour)),
		WarningThresholdPct:  c.WarningThreshold,
		NotificationCooldown: time.Duration(c.NotificationCooldownMinutes * float64(time.Minute)),
	}
}

// PlanDefinition resolves the configured plan
func (c Config) PlanDefinition() model.PlanDefinition {
	return model.PlanOrDefault(c.Plan)
}

// RefreshInterval returns the poll period
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}
