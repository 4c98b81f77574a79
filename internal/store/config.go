package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reqtree/internal/dragdrop"
)

type GlobalConfig struct {
	CurrentWorkspace string `json:"currentWorkspace,omitempty"`

	// Remote is the base URL of a reqtree server. When empty the CLI and TUI talk to
	// the local database directly.
	Remote string `json:"remote,omitempty"`
	// RemoteTimeout bounds each remote call, as a Go duration ("10s").
	RemoteTimeout string `json:"remoteTimeout,omitempty"`

	// Thresholds overrides the drop classifier's row bands.
	Thresholds *dragdrop.Thresholds `json:"thresholds,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`
}

func (c GlobalConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RemoteTimeout, validation.By(func(v any) error {
			s, _ := v.(string)
			if strings.TrimSpace(s) == "" {
				return nil
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return errors.New("must be a duration like 10s")
			}
			if d <= 0 {
				return errors.New("must be positive")
			}
			return nil
		})),
		validation.Field(&c.LogLevel, validation.In("", "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace")),
		validation.Field(&c.Thresholds),
	)
}

// Timeout returns RemoteTimeout, or fallback when unset.
func (c GlobalConfig) Timeout(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.RemoteTimeout))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ClassifierThresholds returns the configured thresholds or the defaults.
func (c GlobalConfig) ClassifierThresholds() dragdrop.Thresholds {
	if c.Thresholds == nil {
		return dragdrop.DefaultThresholds()
	}
	return *c.Thresholds
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.reqtree).
	if v := strings.TrimSpace(os.Getenv("REQTREE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// CLI and TUI may both write config; a temp file + rename keeps readers from seeing a torn file.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
