// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// HomeEnv overrides the configuration directory when set.
const HomeEnv = "SHIFTLOG_HOME"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shiftlog configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API       APIConfig       `toml:"api" json:"api"`
	Session   SessionConfig   `toml:"session" json:"session"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	Export    ExportConfig    `toml:"export" json:"export"`
	Dashboard DashboardConfig `toml:"dashboard" json:"dashboard"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	Audit     AuditConfig     `toml:"audit" json:"audit"`
}

// APIConfig contains the report API connection settings.
type APIConfig struct {
	// BaseURL is the root of the REST API, e.g. http://localhost:4000/api
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each HTTP request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSec throttles the client (0 = unlimited)
	RequestsPerSec float64 `toml:"requests_per_sec" json:"requests_per_sec"`
	// MaxRetries applies to idempotent GETs only
	MaxRetries int `toml:"max_retries" json:"max_retries"`
}

// SessionConfig contains the idle timeout tunables.
type SessionConfig struct {
	// IdleTimeoutSecs is the inactivity window before the warning (default 600)
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
	// WarningSecs is the length of the warning countdown (default 30)
	WarningSecs int `toml:"warning_secs" json:"warning_secs"`
	// AutosaveSecs is how often a dirty draft is saved (default 30)
	AutosaveSecs int `toml:"autosave_secs" json:"autosave_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Mouse enables mouse reporting, which also feeds the idle timer
	Mouse bool `toml:"mouse" json:"mouse"`
}

// ExportConfig controls report export.
type ExportConfig struct {
	// Dir is where exports are written (empty = current directory)
	Dir string `toml:"dir" json:"dir"`
	// Format is "xlsx" or "json"
	Format string `toml:"format" json:"format"`
}

// DashboardConfig lists the embedded analytics charts.
type DashboardConfig struct {
	ChartURLs []string `toml:"chart_urls" json:"chart_urls"`
}

// StorageConfig controls local persistence.
type StorageConfig struct {
	// DataDir holds the draft database and credential store (empty = config dir)
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// AuditConfig controls the local audit log.
type AuditConfig struct {
	Enabled   bool   `toml:"enabled" json:"enabled"`
	LogPath   string `toml:"log_path" json:"log_path"`
	MaxSizeMB int    `toml:"max_size_mb" json:"max_size_mb"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		API: APIConfig{
			BaseURL:        "http://localhost:4000/api",
			TimeoutSecs:    15,
			RequestsPerSec: 10,
			MaxRetries:     2,
		},
		Session: SessionConfig{
			IdleTimeoutSecs: 600,
			WarningSecs:     30,
			AutosaveSecs:    30,
		},
		UI: UIConfig{
			Theme: "auto",
			Mouse: true,
		},
		Export: ExportConfig{
			Format: "xlsx",
		},
		Audit: AuditConfig{
			Enabled:   true,
			MaxSizeMB: 10,
		},
	}
}

// SessionTimeout converts the [session] section for the timeout controller.
func (c *Config) SessionTimeout() session.Config {
	return session.Config{
		IdleDuration:   time.Duration(c.Session.IdleTimeoutSecs) * time.Second,
		WarningSeconds: c.Session.WarningSecs,
		TickInterval:   session.DefaultTickInterval,
	}
}

// AutosaveInterval returns the draft autosave period.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.Session.AutosaveSecs) * time.Second
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// DataDir returns the directory for local state, defaulting to the config dir.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the shiftlog configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shiftlog"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return util.EnsureDir(dir)
}

// ensureSecurePermissions narrows a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv reads .env from the working directory and from the config
// directory. Variables already set in the environment win.
func LoadDotEnv() {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	LoadDotEnv()

	for _, candidate := range []struct {
		path func() (string, error)
		load func(*Config, string) error
	}{
		{ConfigPathTOML, LoadTOML},
		{ConfigPathJSON, LoadJSON},
	} {
		path, err := candidate.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg := Default()
		if err := candidate.load(cfg, path); err != nil {
			return Default().finish(), fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
		}
		if err := cfg.finish().Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	cfg := Default().finish()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	if err := cfg.finish().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// finish applies env overrides and fills zero values.
func (c *Config) finish() *Config {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	return c
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with mode 0600.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# shiftlog configuration file\n")
	buf.WriteString("# Generated by shiftlog - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with mode 0600.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every validation failure.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration. It returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RequestsPerSec < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_sec", Message: "must be non-negative"})
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "api.max_retries",
			Message: fmt.Sprintf("must be 0-10, got %d", c.API.MaxRetries),
		})
	}

	if c.Session.IdleTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "session.idle_timeout_secs",
			Message: fmt.Sprintf("must be positive, got %d", c.Session.IdleTimeoutSecs),
		})
	}
	if c.Session.WarningSecs < 1 || c.Session.WarningSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "session.warning_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Session.WarningSecs),
		})
	}
	if c.Session.AutosaveSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "session.autosave_secs",
			Message: fmt.Sprintf("must be positive, got %d", c.Session.AutosaveSecs),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if f := strings.ToLower(c.Export.Format); f != "xlsx" && f != "json" {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("must be xlsx or json, got %q", c.Export.Format),
		})
	}

	for i, raw := range c.Dashboard.ChartURLs {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("dashboard.chart_urls[%d]", i),
				Message: fmt.Sprintf("not a URL: %q", raw),
			})
		}
	}

	if c.Audit.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: "audit.max_size_mb", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Session.IdleTimeoutSecs == 0 {
		c.Session.IdleTimeoutSecs = d.Session.IdleTimeoutSecs
	}
	if c.Session.WarningSecs == 0 {
		c.Session.WarningSecs = d.Session.WarningSecs
	}
	if c.Session.AutosaveSecs == 0 {
		c.Session.AutosaveSecs = d.Session.AutosaveSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	if c.Audit.MaxSizeMB == 0 {
		c.Audit.MaxSizeMB = d.Audit.MaxSizeMB
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SHIFTLOG_API_URL: overrides api.base_url
//   - SHIFTLOG_IDLE_SECS: overrides session.idle_timeout_secs
//   - SHIFTLOG_WARNING_SECS: overrides session.warning_secs
//   - SHIFTLOG_THEME: overrides ui.theme
//   - SHIFTLOG_EXPORT_DIR: overrides export.dir
//   - SHIFTLOG_DATA_DIR: overrides storage.data_dir
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SHIFTLOG_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHIFTLOG_IDLE_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.IdleTimeoutSecs = n
		}
	}
	if v := os.Getenv("SHIFTLOG_WARNING_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.WarningSecs = n
		}
	}
	if v := os.Getenv("SHIFTLOG_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SHIFTLOG_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("SHIFTLOG_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "session.warning_secs").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.base_url",
		"api.timeout_secs",
		"api.requests_per_sec",
		"api.max_retries",
		"session.idle_timeout_secs",
		"session.warning_secs",
		"session.autosave_secs",
		"ui.theme",
		"ui.mouse",
		"export.dir",
		"export.format",
		"dashboard.chart_urls",
		"storage.data_dir",
		"audit.enabled",
		"audit.log_path",
		"audit.max_size_mb",
	}
}

// =============================================================================
// COPY AND DISPLAY
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Dashboard.ChartURLs != nil {
		clone.Dashboard.ChartURLs = append([]string(nil), c.Dashboard.ChartURLs...)
	}
	return &clone
}

// String renders the config as JSON with credentials in URLs redacted.
func (c *Config) String() string {
	safe := c.Clone()
	safe.API.BaseURL = redactURL(safe.API.BaseURL)
	for i, u := range safe.Dashboard.ChartURLs {
		safe.Dashboard.ChartURLs[i] = redactURL(u)
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// redactURL hides the password of a URL with userinfo.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
