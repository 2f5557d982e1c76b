// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultMaxFileSize is the default max file size before rotation (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Event types written by shiftlog.
const (
	EventLogin           = "LOGIN"
	EventLoginFailed     = "LOGIN_FAILED"
	EventLogout          = "LOGOUT"
	EventSessionStarted  = "SESSION_STARTED"
	EventSessionWarning  = "SESSION_WARNING"
	EventSessionExtended = "SESSION_EXTENDED"
	EventSessionExpired  = "SESSION_EXPIRED"
	EventTeardownFailed  = "TEARDOWN_FAILED"
	EventReportSubmitted = "REPORT_SUBMITTED"
	EventReportDeleted   = "REPORT_DELETED"
	EventCatalogChanged  = "CATALOG_CHANGED"
	EventUserRegistered  = "USER_REGISTERED"
	EventExport          = "EXPORT"
	EventDraftAutosaved  = "DRAFT_AUTOSAVED"
	EventConfigReloaded  = "CONFIG_RELOADED"
)

// =============================================================================
// AUDIT EVENT
// =============================================================================

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time
	Type      string
	SessionID string
	User      string
	Metadata  map[string]string
	Success   bool
	Error     string
}

// ToLogLine formats the event as a single log line. Metadata keys are
// sorted so lines are stable.
func (e *Event) ToLogLine() string {
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+e.Metadata[k])
	}

	status := "SUCCESS"
	if !e.Success {
		if e.Error != "" {
			status = "ERROR: " + e.Error
		} else {
			status = "FAILURE"
		}
	}

	return fmt.Sprintf("%s | %s | %s | %s | %s | %s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.Type,
		e.SessionID,
		e.User,
		strings.Join(pairs, " "),
		status,
	)
}

// =============================================================================
// REDACTION
// =============================================================================

// Redactor defines the interface for secret redaction.
type Redactor interface {
	Redact(input string) string
	Name() string
}

// PatternRedactor redacts text matching a regex pattern.
type PatternRedactor struct {
	name    string
	pattern *regexp.Regexp
	replace string
}

// NewPatternRedactor creates a new pattern-based redactor.
func NewPatternRedactor(name string, pattern *regexp.Regexp, replace string) *PatternRedactor {
	return &PatternRedactor{name: name, pattern: pattern, replace: replace}
}

// Redact replaces matches with the replacement string.
func (r *PatternRedactor) Redact(input string) string {
	return r.pattern.ReplaceAllString(input, r.replace)
}

// Name returns the redactor name.
func (r *PatternRedactor) Name() string {
	return r.name
}

// JWT comes before Bearer so a bearer JWT is reported as a JWT.
var secretPatterns = []struct {
	name    string
	pattern *regexp.Regexp
	replace string
}{
	{"JWT", regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), "[JWT_REDACTED]"},
	{"Bearer", regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-_.]+`), "Bearer [TOKEN_REDACTED]"},
	{"Password", regexp.MustCompile(`(?i)(password|passwd|pwd|contraseña)\s*[=:]\s*\S+`), "[PASSWORD_REDACTED]"},
}

func defaultRedactors() []Redactor {
	redactors := make([]Redactor, 0, len(secretPatterns))
	for _, sp := range secretPatterns {
		redactors = append(redactors, NewPatternRedactor(sp.name, sp.pattern, sp.replace))
	}
	return redactors
}

// RedactSecrets applies the built-in redactors to input.
func RedactSecrets(input string) string {
	for _, r := range defaultRedactors() {
		input = r.Redact(input)
	}
	return input
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

// Logger provides thread-safe audit logging with secret redaction.
type Logger struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	enabled   bool
	maxSize   int64
	redactors []Redactor
	now       func() time.Time
}

// NewLogger opens (or creates) the audit log at path with mode 0600.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	return &Logger{
		path:      path,
		file:      file,
		enabled:   true,
		maxSize:   DefaultMaxFileSize,
		redactors: defaultRedactors(),
		now:       time.Now,
	}, nil
}

// Log redacts and appends one event.
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	if event.Metadata != nil {
		redacted := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			redacted[k] = l.redactLocked(v)
		}
		event.Metadata = redacted
	}
	event.Error = l.redactLocked(event.Error)

	if err := l.checkRotationLocked(); err != nil {
		return fmt.Errorf("audit rotation failed: %w", err)
	}
	if _, err := fmt.Fprintln(l.file, event.ToLogLine()); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

// LogEvent records a successful event.
func (l *Logger) LogEvent(sessionID, user, eventType string, metadata map[string]string) error {
	return l.Log(Event{
		Type:      eventType,
		SessionID: sessionID,
		User:      user,
		Metadata:  metadata,
		Success:   true,
	})
}

// LogFailure records a failed event with its error.
func (l *Logger) LogFailure(sessionID, user, eventType string, err error, metadata map[string]string) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return l.Log(Event{
		Type:      eventType,
		SessionID: sessionID,
		User:      user,
		Metadata:  metadata,
		Error:     msg,
	})
}

// Redact applies every redactor to input.
func (l *Logger) Redact(input string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.redactLocked(input)
}

func (l *Logger) redactLocked(input string) string {
	for _, r := range l.redactors {
		input = r.Redact(input)
	}
	return input
}

// AddRedactor adds a custom redactor.
func (l *Logger) AddRedactor(r Redactor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redactors = append(l.redactors, r)
}

// Rotate moves the current log aside and starts a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotateLocked()
}

func (l *Logger) rotateLocked() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log for rotation: %w", err)
	}

	ext := filepath.Ext(l.path)
	base := strings.TrimSuffix(l.path, ext)
	rotatedPath := fmt.Sprintf("%s_%s%s", base, l.now().Format("20060102_150405.000000000"), ext)

	if err := os.Rename(l.path, rotatedPath); err != nil {
		l.file, _ = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.file = nil
		return fmt.Errorf("failed to create new audit log after rotation: %w", err)
	}
	l.file = file
	return nil
}

func (l *Logger) checkRotationLocked() error {
	if l.maxSize <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() >= l.maxSize {
		return l.rotateLocked()
	}
	return nil
}

// SetMaxSize sets the maximum file size before rotation. Zero disables it.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = size
}

// SetEnabled enables or disables logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// =============================================================================
// GLOBAL LOGGER
// =============================================================================

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Init opens the process-wide audit log. When enabled is false, events are
// discarded.
func Init(path string, enabled bool, maxSizeMB int) error {
	if !enabled {
		SetGlobal(nil)
		return nil
	}
	l, err := NewLogger(path)
	if err != nil {
		return err
	}
	if maxSizeMB > 0 {
		l.SetMaxSize(int64(maxSizeMB) * 1024 * 1024)
	}
	SetGlobal(l)
	return nil
}

// SetGlobal replaces the process-wide logger, closing the previous one.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()
	if prev != nil && prev != l {
		prev.Close()
	}
}

// Global returns the process-wide logger, nil when auditing is off. A nil
// *Logger discards events.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Record writes a successful event to the global logger.
func Record(sessionID, user, eventType string, metadata map[string]string) error {
	return Global().LogEvent(sessionID, user, eventType, metadata)
}

// RecordFailure writes a failed event to the global logger.
func RecordFailure(sessionID, user, eventType string, err error, metadata map[string]string) error {
	return Global().LogFailure(sessionID, user, eventType, err, metadata)
}
