package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level quill configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Control       ControlConfig `mapstructure:"control" yaml:"control"`
	Input         InputConfig   `mapstructure:"input" yaml:"input"`
	Editor        EditorConfig  `mapstructure:"editor" yaml:"editor"`
	UI            UIConfig      `mapstructure:"ui" yaml:"ui"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ControlConfig configures the file-based control channel.
type ControlConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	Watch          bool   `mapstructure:"watch" yaml:"watch"`
}

// InputConfig configures terminal input decoding.
type InputConfig struct {
	EscapeTimeoutMs int `mapstructure:"escape_timeout_ms" yaml:"escape_timeout_ms"`
	// Raw reads stdin bytes through the quill decoder instead of Bubble Tea's
	// key reader.
	Raw bool `mapstructure:"raw" yaml:"raw"`
}

// EditorConfig is forwarded to buffer.Options.
type EditorConfig struct {
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
	KillRingSize int `mapstructure:"kill_ring_size" yaml:"kill_ring_size"`
	// WrapWidth of 0 follows the terminal width.
	WrapWidth int `mapstructure:"wrap_width" yaml:"wrap_width"`
	TabWidth  int `mapstructure:"tab_width" yaml:"tab_width"`
}

// UIConfig controls the composer view.
type UIConfig struct {
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
	ToastMs int    `mapstructure:"toast_ms" yaml:"toast_ms"`
	Prompt  string `mapstructure:"prompt" yaml:"prompt"`
}

// LoggingConfig controls the log file. The composer owns the terminal, so
// logs never go to stderr while it runs.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Control: ControlConfig{
			Dir:            "$HOME/.quill-control",
			PollIntervalMs: 250,
			Watch:          true,
		},
		Input: InputConfig{
			EscapeTimeoutMs: 50,
			Raw:             true,
		},
		Editor: EditorConfig{
			HistoryLimit: 1000,
			KillRingSize: 1,
			WrapWidth:    0,
			TabWidth:     4,
		},
		UI: UIConfig{
			NoColor: false,
			ToastMs: 3000,
			Prompt:  "› ",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "$HOME/.quill/quill.log",
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".quill", "config.yaml"), nil
}

func (c ControlConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c InputConfig) EscapeTimeout() time.Duration {
	return time.Duration(c.EscapeTimeoutMs) * time.Millisecond
}

func (c UIConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastMs) * time.Millisecond
}
