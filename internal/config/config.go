package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const appName = "subtasks"

// Config holds application configuration
type Config struct {
	Theme    string         `toml:"theme"`
	Storage  StorageConfig  `toml:"storage"`
	Editor   EditorConfig   `toml:"editor"`
	Reminder ReminderConfig `toml:"reminder"`
	Log      LogConfig      `toml:"log"`

	path string
}

// StorageConfig selects where outlines and drafts are kept
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	Compress string `toml:"compress"`
	Backups  int    `toml:"backups"`
}

// EditorConfig holds the editing delays, in milliseconds
type EditorConfig struct {
	DraftDebounceMS int `toml:"draft_debounce_ms"`
	CheckboxDelayMS int `toml:"checkbox_delay_ms"`
	NoticeMS        int `toml:"notice_ms"`
}

// ReminderConfig configures the scheduler, notifications and alarm
type ReminderConfig struct {
	PollIntervalMS int     `toml:"poll_interval_ms"`
	Notifications  *bool   `toml:"notifications,omitempty"`
	Alarm          string  `toml:"alarm"`
	Volume         float64 `toml:"volume"`
	MaxRingSeconds int     `toml:"max_ring_seconds"`
	ClockFormat    string  `toml:"clock_format"`
	WeekdayFormat  string  `toml:"weekday_format"`
	DateFormat     string  `toml:"date_format"`
}

// LogConfig configures the log file
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Load loads the config file from the standard location
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return defaultConfig(), nil // Return default if can't find config path
	}

	return LoadFromFile(configPath)
}

// LoadFromFile loads config from a specific file. Missing values keep
// their defaults.
func LoadFromFile(filePath string) (*Config, error) {
	config := defaultConfig()
	config.path = filePath

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return config, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be file or sqlite, got %q", c.Storage.Backend)
	}
	switch strings.ToLower(c.Storage.Compress) {
	case "none", "zstd", "lz4":
	default:
		return fmt.Errorf("storage.compress must be none, zstd or lz4, got %q", c.Storage.Compress)
	}
	if c.Reminder.Volume < 0 || c.Reminder.Volume > 1 {
		return fmt.Errorf("reminder.volume must be between 0 and 1, got %v", c.Reminder.Volume)
	}
	for name, ms := range map[string]int{
		"editor.draft_debounce_ms":  c.Editor.DraftDebounceMS,
		"editor.checkbox_delay_ms":  c.Editor.CheckboxDelayMS,
		"editor.notice_ms":          c.Editor.NoticeMS,
		"reminder.poll_interval_ms": c.Reminder.PollIntervalMS,
	} {
		if ms <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, ms)
		}
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		Theme: "default",
		Storage: StorageConfig{
			Backend:  "file",
			Compress: "none",
			Backups:  20,
		},
		Editor: EditorConfig{
			DraftDebounceMS: 500,
			CheckboxDelayMS: 500,
			NoticeMS:        2000,
		},
		Reminder: ReminderConfig{
			PollIntervalMS: 10000,
			Alarm:          "dreamscape",
			Volume:         1,
			MaxRingSeconds: 60,
			ClockFormat:    "%I:%M %p",
			WeekdayFormat:  "%A, %I:%M %p",
			DateFormat:     "%b %d, %Y %I:%M %p",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DataDir returns the directory holding outlines, drafts, backups and logs
func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to /tmp if home directory cannot be determined
		return filepath.Join(os.TempDir(), "."+appName)
	}
	return filepath.Join(homeDir, ".local", "share", appName)
}

// BackupDir returns the backup directory inside the data directory
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir(), "backups")
}

// LogFile returns the path of the log file
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	return filepath.Join(c.DataDir(), appName+".log")
}

// SocketPath returns the path of the control socket
func (c *Config) SocketPath() string {
	return filepath.Join(c.DataDir(), appName+".sock")
}

// ThemeDir returns the directory searched for theme files
func (c *Config) ThemeDir() string {
	configDir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "themes")
}

// DraftDebounce returns the quiet period before a draft is written
func (c *Config) DraftDebounce() time.Duration {
	return time.Duration(c.Editor.DraftDebounceMS) * time.Millisecond
}

// CheckboxDelay returns the delay before a checked item is moved or removed
func (c *Config) CheckboxDelay() time.Duration {
	return time.Duration(c.Editor.CheckboxDelayMS) * time.Millisecond
}

// NoticeDuration returns how long a notice stays in the status line
func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.Editor.NoticeMS) * time.Millisecond
}

// PollInterval returns the reminder scheduler interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Reminder.PollIntervalMS) * time.Millisecond
}

// MaxRing returns the longest the alarm rings without being silenced
func (c *Config) MaxRing() time.Duration {
	return time.Duration(c.Reminder.MaxRingSeconds) * time.Second
}

// Save persists the configuration to the TOML file it was loaded from, or
// the standard location.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
