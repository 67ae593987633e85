package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/lapse/internal/classify"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

// ============================================================
// Load and defaults
// ============================================================

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.IdleThresholdSeconds != 300 {
		t.Errorf("idle threshold = %d, want 300", cfg.IdleThresholdSeconds)
	}
	if cfg.Goals[classify.Coding] != 4 {
		t.Errorf("default coding goal = %g, want 4", cfg.Goals[classify.Coding])
	}
	if !cfg.NotificationsEnabled {
		t.Error("notifications should default to enabled")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetIdleThreshold(120); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetGoal("Design", 2.5); err != nil {
		t.Fatal(err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.IdleThresholdSeconds != 120 {
		t.Errorf("idle threshold = %d, want 120", again.IdleThresholdSeconds)
	}
	if again.Goals["Design"] != 2.5 {
		t.Errorf("design goal = %g, want 2.5", again.Goals["Design"])
	}
}

// A file that exists but does not parse is an error, and the broken file
// must survive for the user to inspect.
func TestLoadCorruptNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	garbage := []byte("{not json")
	if err := os.WriteFile(path, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(garbage) {
		t.Error("corrupt config file was modified")
	}
}

// ============================================================
// Custom rules
// ============================================================

func TestRuleOrderSurvivesSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	patterns := []string{"zeta", "alpha", "mmm", "beta"}
	for _, p := range patterns {
		if err := cfg.AddRule(p, "Custom"); err != nil {
			t.Fatal(err)
		}
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.CustomRules) != len(patterns) {
		t.Fatalf("got %d rules, want %d", len(again.CustomRules), len(patterns))
	}
	for i, p := range patterns {
		if again.CustomRules[i].Pattern != p {
			t.Errorf("rule %d = %q, want %q (insertion order lost)", i, again.CustomRules[i].Pattern, p)
		}
	}
}

func TestAddRuleUpdatesInPlace(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.AddRule("foo", "Coding"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddRule("bar", "Design"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddRule("foo", "Productivity"); err != nil {
		t.Fatal(err)
	}

	if len(cfg.CustomRules) != 2 {
		t.Fatalf("got %d rules, want 2", len(cfg.CustomRules))
	}
	if cfg.CustomRules[0].Pattern != "foo" || cfg.CustomRules[0].Category != "Productivity" {
		t.Errorf("rule 0 = %+v, want foo -> Productivity keeping position", cfg.CustomRules[0])
	}
}

func TestRemoveRule(t *testing.T) {
	cfg := testConfig(t)
	cfg.AddRule("a", "X")
	cfg.AddRule("b", "Y")
	cfg.AddRule("c", "Z")

	if err := cfg.RemoveRule("b"); err != nil {
		t.Fatal(err)
	}
	if len(cfg.CustomRules) != 2 || cfg.CustomRules[0].Pattern != "a" || cfg.CustomRules[1].Pattern != "c" {
		t.Errorf("rules after remove = %+v", cfg.CustomRules)
	}

	if err := cfg.RemoveRule("nope"); err == nil {
		t.Error("removing a missing rule should fail")
	}
}

// ============================================================
// Goals and validation
// ============================================================

func TestSetGoalValidation(t *testing.T) {
	cfg := testConfig(t)

	if err := cfg.SetGoal("", 2); err == nil {
		t.Error("empty category should fail")
	}
	if err := cfg.SetGoal("Coding", -1); err == nil {
		t.Error("negative hours should fail")
	}
	if err := cfg.SetGoal("Coding", 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := cfg.Goals["Coding"]; ok {
		t.Error("zero hours should remove the goal")
	}
}

func TestSetIdleThresholdRejectsNegative(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.SetIdleThreshold(-5); err == nil {
		t.Error("negative threshold should fail")
	}
}

// ============================================================
// Password gate
// ============================================================

func TestPassword(t *testing.T) {
	cfg := testConfig(t)

	if !cfg.CheckPassword("anything") {
		t.Error("no password set: everything should pass")
	}

	if err := cfg.SetPassword("hunter2"); err != nil {
		t.Fatal(err)
	}
	if cfg.PasswordHash == "hunter2" {
		t.Error("password stored in plaintext")
	}
	if !cfg.CheckPassword("hunter2") {
		t.Error("correct password rejected")
	}
	if cfg.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}

	if err := cfg.SetPassword(""); err != nil {
		t.Fatal(err)
	}
	if !cfg.CheckPassword("whatever") {
		t.Error("cleared password should pass everything")
	}
}

// ============================================================
// Exclusions and focus blocks
// ============================================================

func TestExclusionsDeduplicate(t *testing.T) {
	cfg := testConfig(t)
	cfg.AddExclusion("1password")
	cfg.AddExclusion("1password")
	n := 0
	for _, p := range cfg.ExcludedApps {
		if p == "1password" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("exclusion appears %d times, want 1", n)
	}
}

func TestFocusBlocks(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.AddFocusBlock("hackernews"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.RemoveFocusBlock("hackernews"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.RemoveFocusBlock("hackernews"); err == nil {
		t.Error("removing a missing block should fail")
	}
	for _, p := range cfg.FocusModeBlocked {
		if p == "hackernews" {
			t.Error("block still present after remove")
		}
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "config.json")
	if _, err := Load(path); err != nil {
		t.Fatalf("load should create parent directories: %v", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		t.Error("config file not created")
	}
}
