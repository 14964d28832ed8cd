package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

const flagKey = "voip.obey_asserted_identity"

func writeConfigFile(t *testing.T, body string) {
	t.Helper()
	if err := os.MkdirAll("config", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join("config", "config.test.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadReadsFileOverDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")
	writeConfigFile(t, "mode: debug\nport: 9999\nvoip:\n  obey_asserted_identity: true\n")

	cfg, flags, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9999 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.DirectoryTimeout != 10*time.Second {
		t.Fatalf("default timeout lost: %v", cfg.DirectoryTimeout)
	}
	if !flags.Bool(flagKey) {
		t.Fatalf("flag from file not visible")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	cfg, flags, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "release" || cfg.Port != 8080 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if flags.Bool(flagKey) {
		t.Fatalf("flag must default to disabled")
	}
}

func TestFlagsReadLiveNotCached(t *testing.T) {
	v := viper.New()
	f := &Flags{v: v}

	if f.Bool(flagKey) {
		t.Fatalf("unset flag must read false")
	}
	v.Set(flagKey, true)
	if !f.Bool(flagKey) {
		t.Fatalf("flag read was cached; toggling must take effect on the next read")
	}
	v.Set(flagKey, false)
	if f.Bool(flagKey) {
		t.Fatalf("flag read was cached after second toggle")
	}
}

func TestFlagTogglesOnConfigRewrite(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")
	writeConfigFile(t, "voip:\n  obey_asserted_identity: false\n")

	_, flags, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if flags.Bool(flagKey) {
		t.Fatalf("flag should start disabled")
	}

	writeConfigFile(t, "voip:\n  obey_asserted_identity: true\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if flags.Bool(flagKey) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("rewritten config never picked up")
}
