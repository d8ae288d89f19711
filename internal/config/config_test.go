package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "zipcrack.yaml", "archive: secret.zip\nalphabet: abc\nmin_length: 2\nmax_length: 6\nmembers: \"*.txt,docs/**\"\nhistory:\n  enabled: true\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Archive == nil || *cfg.Archive != "secret.zip" {
		t.Fatalf("expected archive=secret.zip, got %#v", cfg.Archive)
	}
	if cfg.Alphabet == nil || *cfg.Alphabet != "abc" {
		t.Fatalf("expected alphabet=abc, got %#v", cfg.Alphabet)
	}
	if cfg.MinLength == nil || *cfg.MinLength != 2 {
		t.Fatalf("expected min_length=2, got %#v", cfg.MinLength)
	}
	if cfg.MaxLength == nil || *cfg.MaxLength != 6 {
		t.Fatalf("expected max_length=6, got %#v", cfg.MaxLength)
	}
	if cfg.Members == nil || *cfg.Members != "*.txt,docs/**" {
		t.Fatalf("unexpected members %#v", cfg.Members)
	}
	if !cfg.GetHistoryConfig().IsEnabled() {
		t.Fatalf("expected history enabled")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "bad.yml", "min_length: [oops\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "zipcrack.yaml", "max_length: 1\n")
	writeTemp(t, dir, ".zipcrack.yaml", "max_length: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.MaxLength == nil || *cfg.MaxLength != 7 {
		t.Fatalf("expected max_length=7 from .zipcrack.yaml, got %#v", cfg.MaxLength)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "zipcrack")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "log_level: debug\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level=debug from global config, got %#v", cfg.LogLevel)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := LoadGlobal()
	assert.Error(t, err)
}

func TestWriteFile_RoundTripAndNoClobber(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".zipcrack.yml")
	archive, maxLen := "vault.zip", 5
	require.NoError(t, WriteFile(p, FileConfig{Archive: &archive, MaxLength: &maxLen}, false))

	got, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, got.Archive)
	assert.Equal(t, "vault.zip", *got.Archive)
	require.NotNil(t, got.MaxLength)
	assert.Equal(t, 5, *got.MaxLength)
	assert.Nil(t, got.Alphabet)

	err = WriteFile(p, FileConfig{}, false)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, WriteFile(p, FileConfig{}, true))
}

func TestHistoryConfig_Defaults(t *testing.T) {
	hc := FileConfig{}.GetHistoryConfig()
	assert.False(t, hc.IsEnabled())
	assert.Empty(t, hc.GetPath())
}

func TestMergeHistory_LocalWinsPerField(t *testing.T) {
	on, off := true, false
	global := HistoryConfig{Enabled: &on, Path: strPtr("/var/global.jsonl")}

	got := MergeHistory(HistoryConfig{Enabled: &off}, global)
	assert.False(t, got.IsEnabled())
	assert.Equal(t, "/var/global.jsonl", got.GetPath())

	got = MergeHistory(HistoryConfig{}, global)
	assert.True(t, got.IsEnabled())

	got = MergeHistory(HistoryConfig{}, HistoryConfig{})
	assert.False(t, got.IsEnabled())
	assert.Empty(t, got.GetPath())
}

func strPtr(s string) *string { return &s }
