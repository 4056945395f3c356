package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("control.dir", cfg.Control.Dir)
	v.SetDefault("control.poll_interval_ms", cfg.Control.PollIntervalMs)
	v.SetDefault("control.watch", cfg.Control.Watch)
	v.SetDefault("input.escape_timeout_ms", cfg.Input.EscapeTimeoutMs)
	v.SetDefault("input.raw", cfg.Input.Raw)
	v.SetDefault("editor.history_limit", cfg.Editor.HistoryLimit)
	v.SetDefault("editor.kill_ring_size", cfg.Editor.KillRingSize)
	v.SetDefault("editor.wrap_width", cfg.Editor.WrapWidth)
	v.SetDefault("editor.tab_width", cfg.Editor.TabWidth)
	v.SetDefault("ui.no_color", cfg.UI.NoColor)
	v.SetDefault("ui.toast_ms", cfg.UI.ToastMs)
	v.SetDefault("ui.prompt", cfg.UI.Prompt)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// isNotFound reports a missing config file. viper returns its own error when
// searching config paths and the os error when SetConfigFile names a file.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

func validate(cfg Config) error {
	if cfg.Control.PollIntervalMs <= 0 {
		return fmt.Errorf("control.poll_interval_ms must be positive")
	}
	if cfg.Input.EscapeTimeoutMs <= 0 {
		return fmt.Errorf("input.escape_timeout_ms must be positive")
	}
	if cfg.Editor.KillRingSize < 1 {
		return fmt.Errorf("editor.kill_ring_size must be at least 1")
	}
	if cfg.Editor.WrapWidth < 0 {
		return fmt.Errorf("editor.wrap_width must not be negative")
	}
	if cfg.UI.ToastMs < 0 {
		return fmt.Errorf("ui.toast_ms must not be negative")
	}
	level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	for _, l := range logLevels {
		if level == l {
			return nil
		}
	}
	return fmt.Errorf("unsupported logging.level %q", cfg.Logging.Level)
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Control.Dir = expandPath(cfg.Control.Dir)
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

// expandPath expands $VAR references and a leading ~/.
func expandPath(value string) string {
	if value == "" {
		return value
	}
	value = os.Expand(value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	return value
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
