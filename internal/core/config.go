package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBase is the hosted guide service.
const DefaultAPIBase = "https://personalized-guide-977121587860.asia-south2.run.app"

// DefaultTimeout bounds each request to the guide service.
const DefaultTimeout = 30 * time.Second

const (
	envAPIBase   = "AMELIE_API_BASE"
	envTimeout   = "AMELIE_TIMEOUT"
	envHistoryDB = "AMELIE_HISTORY_DB"
	envNotify    = "AMELIE_NOTIFY"
)

// Config keys accepted by `amelie config`.
const (
	KeyAPIBase        = "api_base"
	KeyTimeoutSeconds = "timeout_seconds"
	KeyHistoryPath    = "history_path"
	KeyNotify         = "notify"
)

// GlobalConfig is the persisted user config. Zero values mean "use the
// default".
type GlobalConfig struct {
	APIBase        string `json:"api_base,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	HistoryPath    string `json:"history_path,omitempty"`
	Notify         *bool  `json:"notify,omitempty"`
}

// Settings is the effective configuration after all layers are applied.
type Settings struct {
	APIBase     string        `json:"api_base"`
	Timeout     time.Duration `json:"timeout"`
	HistoryPath string        `json:"history_path"`
	Notify      bool          `json:"notify"`
}

// ConfigDir returns ~/.config/amelie.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "amelie"), nil
}

func globalConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func ensureConfigDir() (string, error) {
	path, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// ReadGlobalConfig reads the config file. A missing file yields an empty
// config.
func ReadGlobalConfig() (GlobalConfig, error) {
	path, err := globalConfigPath()
	if err != nil {
		return GlobalConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GlobalConfig{}, nil
		}
		return GlobalConfig{}, err
	}
	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return GlobalConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

// WriteGlobalConfig writes the config file.
func WriteGlobalConfig(config GlobalConfig) error {
	path, err := ensureConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() (Settings, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		APIBase:     DefaultAPIBase,
		Timeout:     DefaultTimeout,
		HistoryPath: filepath.Join(dir, "history.db"),
		Notify:      true,
	}, nil
}

// LoadSettings resolves settings from defaults, the config file, a .env
// file at dotenvPath and the process environment, in that order. A missing
// .env file is not an error. Variables already set in the environment win
// over .env values.
func LoadSettings(dotenvPath string) (Settings, error) {
	settings, err := DefaultSettings()
	if err != nil {
		return Settings{}, err
	}

	config, err := ReadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}
	settings = config.apply(settings)

	env := map[string]string{}
	if dotenvPath != "" {
		values, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
		for k, v := range values {
			env[k] = v
		}
	}
	for _, key := range []string{envAPIBase, envTimeout, envHistoryDB, envNotify} {
		if value, ok := os.LookupEnv(key); ok {
			env[key] = value
		}
	}
	return applyEnv(settings, env)
}

func (c GlobalConfig) apply(s Settings) Settings {
	if c.APIBase != "" {
		s.APIBase = c.APIBase
	}
	if c.TimeoutSeconds > 0 {
		s.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	if c.HistoryPath != "" {
		s.HistoryPath = expandHome(c.HistoryPath)
	}
	if c.Notify != nil {
		s.Notify = *c.Notify
	}
	return s
}

func applyEnv(s Settings, env map[string]string) (Settings, error) {
	if v := strings.TrimSpace(env[envAPIBase]); v != "" {
		s.APIBase = v
	}
	if v := strings.TrimSpace(env[envTimeout]); v != "" {
		timeout, err := ParseTimeout(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", envTimeout, err)
		}
		s.Timeout = timeout
	}
	if v := strings.TrimSpace(env[envHistoryDB]); v != "" {
		s.HistoryPath = expandHome(v)
	}
	if v := strings.TrimSpace(env[envNotify]); v != "" {
		notify, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", envNotify, err)
		}
		s.Notify = notify
	}
	return s, nil
}

// ParseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}

// ConfigKeys lists the settable keys in display order.
func ConfigKeys() []string {
	keys := []string{KeyAPIBase, KeyTimeoutSeconds, KeyHistoryPath, KeyNotify}
	sort.Strings(keys)
	return keys
}

// Get returns the stored value for key, or "" when unset.
func (c GlobalConfig) Get(key string) (string, error) {
	switch key {
	case KeyAPIBase:
		return c.APIBase, nil
	case KeyTimeoutSeconds:
		if c.TimeoutSeconds == 0 {
			return "", nil
		}
		return strconv.Itoa(c.TimeoutSeconds), nil
	case KeyHistoryPath:
		return c.HistoryPath, nil
	case KeyNotify:
		if c.Notify == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.Notify), nil
	}
	return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(ConfigKeys(), ", "))
}

// Set validates and stores value under key. An empty value unsets it.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyAPIBase:
		if value != "" {
			parsed, err := url.Parse(value)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("api_base must be a URL with scheme and host")
			}
		}
		c.APIBase = value
	case KeyTimeoutSeconds:
		if value == "" {
			c.TimeoutSeconds = 0
			return nil
		}
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer")
		}
		c.TimeoutSeconds = secs
	case KeyHistoryPath:
		c.HistoryPath = value
	case KeyNotify:
		if value == "" {
			c.Notify = nil
			return nil
		}
		notify, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("notify must be true or false")
		}
		c.Notify = &notify
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
