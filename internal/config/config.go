// Package config owns the tracker's persisted configuration document.
// Front ends read and mutate it only through this package, never by
// touching the file directly.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/lapse/internal/classify"
)

// Project is an entry in the project registry.
type Project struct {
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Config is the flat configuration document. CustomRules keeps insertion
// order because rule precedence is a user-correctness contract.
type Config struct {
	IdleThresholdSeconds  int                `json:"idle_threshold_seconds"`
	Goals                 map[string]float64 `json:"goals"`
	CustomRules           []classify.Rule    `json:"custom_categories"`
	ExcludedApps          []string           `json:"excluded_apps"`
	FocusModeBlocked      []string           `json:"focus_mode_blocked"`
	BreakReminderInterval int                `json:"break_reminder_interval"`
	NotificationsEnabled  bool               `json:"notifications_enabled"`
	ProductiveCategories  []string           `json:"productive_categories"`
	Projects              map[string]Project `json:"projects"`
	PasswordHash          string             `json:"password_hash,omitempty"`

	path string
}

// Default returns a fresh config with the stock defaults.
func Default() *Config {
	return &Config{
		IdleThresholdSeconds: 300,
		Goals: map[string]float64{
			classify.Coding:        4,
			classify.Entertainment: 2,
		},
		ExcludedApps: []string{},
		FocusModeBlocked: []string{
			"facebook", "twitter", "instagram", "tiktok", "youtube", "netflix", "game",
		},
		BreakReminderInterval: 3600,
		NotificationsEnabled:  true,
		ProductiveCategories: []string{
			classify.Coding, classify.Productivity, classify.Education,
		},
		Projects: map[string]Project{},
	}
}

// Load reads the config document at path, creating it with defaults if it
// does not exist. A file that exists but fails to parse is an error; it is
// never overwritten.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the whole document atomically (temp file then rename), so a
// reader never observes a half-written config.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return atomicWrite(c.path, data)
}

// SetIdleThreshold updates the idle threshold. Seconds must be non-negative.
func (c *Config) SetIdleThreshold(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("idle threshold must be >= 0, got %d", seconds)
	}
	c.IdleThresholdSeconds = seconds
	return c.Save()
}

// SetGoal sets the daily goal in hours for a category. Hours must be
// positive; a zero removes the goal.
func (c *Config) SetGoal(category string, hours float64) error {
	if category == "" {
		return errors.New("goal category must not be empty")
	}
	if hours < 0 {
		return fmt.Errorf("goal hours must be >= 0, got %g", hours)
	}
	if c.Goals == nil {
		c.Goals = map[string]float64{}
	}
	if hours == 0 {
		delete(c.Goals, category)
	} else {
		c.Goals[category] = hours
	}
	return c.Save()
}

// AddRule appends a custom classification rule. An existing rule with the
// same pattern is updated in place, keeping its position.
func (c *Config) AddRule(pattern, category string) error {
	if pattern == "" || category == "" {
		return errors.New("rule pattern and category must not be empty")
	}
	for i, r := range c.CustomRules {
		if r.Pattern == pattern {
			c.CustomRules[i].Category = category
			return c.Save()
		}
	}
	c.CustomRules = append(c.CustomRules, classify.Rule{Pattern: pattern, Category: category})
	return c.Save()
}

// RemoveRule deletes the rule with the given pattern, preserving the order
// of the remaining rules.
func (c *Config) RemoveRule(pattern string) error {
	for i, r := range c.CustomRules {
		if r.Pattern == pattern {
			c.CustomRules = append(c.CustomRules[:i], c.CustomRules[i+1:]...)
			return c.Save()
		}
	}
	return fmt.Errorf("no rule with pattern %q", pattern)
}

// AddExclusion adds an app pattern whose time is never recorded.
func (c *Config) AddExclusion(pattern string) error {
	if pattern == "" {
		return errors.New("exclusion pattern must not be empty")
	}
	for _, p := range c.ExcludedApps {
		if p == pattern {
			return nil
		}
	}
	c.ExcludedApps = append(c.ExcludedApps, pattern)
	return c.Save()
}

// AddFocusBlock adds a pattern to the focus-mode blocklist.
func (c *Config) AddFocusBlock(pattern string) error {
	if pattern == "" {
		return errors.New("block pattern must not be empty")
	}
	for _, p := range c.FocusModeBlocked {
		if p == pattern {
			return nil
		}
	}
	c.FocusModeBlocked = append(c.FocusModeBlocked, pattern)
	return c.Save()
}

// RemoveFocusBlock removes a pattern from the focus-mode blocklist.
func (c *Config) RemoveFocusBlock(pattern string) error {
	for i, p := range c.FocusModeBlocked {
		if p == pattern {
			c.FocusModeBlocked = append(c.FocusModeBlocked[:i], c.FocusModeBlocked[i+1:]...)
			return c.Save()
		}
	}
	return fmt.Errorf("no blocked pattern %q", pattern)
}

// AddProject registers a project tag.
func (c *Config) AddProject(name string, p Project) error {
	if name == "" {
		return errors.New("project name must not be empty")
	}
	if c.Projects == nil {
		c.Projects = map[string]Project{}
	}
	c.Projects[name] = p
	return c.Save()
}

// SetPassword stores a sha256 hash of the password. An empty password
// clears the gate.
func (c *Config) SetPassword(password string) error {
	if password == "" {
		c.PasswordHash = ""
	} else {
		c.PasswordHash = hashPassword(password)
	}
	return c.Save()
}

// CheckPassword reports whether password matches the stored hash. With no
// hash set, any password passes.
func (c *Config) CheckPassword(password string) bool {
	if c.PasswordHash == "" {
		return true
	}
	return hashPassword(password) == c.PasswordHash
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DefaultPath returns ~/.config/lapse/config.json (per-OS user config dir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lapse", "config.json"), nil
}

func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
