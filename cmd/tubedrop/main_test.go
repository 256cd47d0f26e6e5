package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath, logLevel = "", ""
	cleanDryRun, statsJSON, versionJSON = false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig creates a config file pointing at a fresh download directory.
func writeConfig(t *testing.T, maxAgeSeconds int) (cfgPath, downloadDir string) {
	t.Helper()

	root := t.TempDir()
	downloadDir = filepath.Join(root, "downloads")
	require.NoError(t, os.MkdirAll(downloadDir, 0755))

	cfgPath = filepath.Join(root, "config.toml")
	content := fmt.Sprintf(`
[storage]
download_dir = %q

[retention]
max_age_seconds = %d
scan_interval_seconds = 60

[logging]
level = "error"
output = "stderr"
`, downloadDir, maxAgeSeconds)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath, downloadDir
}

func writeAged(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestCommandStructure(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"version", "config", "serve", "clean", "stats"} {
		if !found[expected] {
			t.Errorf("Expected command '%s' not found in rootCmd", expected)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig string
		wantLevel  string
	}{
		{name: "long flags", args: []string{"--config", "test.toml", "--log-level", "debug"}, wantConfig: "test.toml", wantLevel: "debug"},
		{name: "short flags", args: []string{"-c", "test.toml", "-l", "warn"}, wantConfig: "test.toml", wantLevel: "warn"},
		{name: "none", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath, logLevel = "", ""
			require.NoError(t, rootCmd.PersistentFlags().Parse(tt.args))

			assert.Equal(t, tt.wantConfig, configPath)
			assert.Equal(t, tt.wantLevel, logLevel)
		})
	}
}

func TestCleanCommand_DryRun(t *testing.T) {
	cfgPath, dir := writeConfig(t, 3600)
	old := writeAged(t, dir, "old.mp4", 10, 2*time.Hour)
	writeAged(t, dir, "new.mp4", 10, time.Minute)

	out, err := execute(t, "clean", "--config", cfgPath, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "1 file(s) older than 1h0m0s")
	assert.Contains(t, out, "old.mp4")
	assert.NotContains(t, out, "new.mp4")
	assert.FileExists(t, old)
}

func TestCleanCommand(t *testing.T) {
	cfgPath, dir := writeConfig(t, 3600)
	old := writeAged(t, dir, "old.mp4", 2048, 2*time.Hour)
	fresh := writeAged(t, dir, "new.mp4", 10, time.Minute)

	out, err := execute(t, "clean", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Removed 1 of 1 expired file(s), freed 2.0 KiB")
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

func TestStatsCommand(t *testing.T) {
	cfgPath, dir := writeConfig(t, 3600)
	writeAged(t, dir, "a.mp4", 100, 0)
	writeAged(t, dir, "b.mp4", 50, 0)

	out, err := execute(t, "stats", "--config", cfgPath, "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, float64(2), got["files"])
	assert.Equal(t, float64(150), got["bytes"])
}

func TestConfigValidateCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t, 3600)

	out, err := execute(t, "config", "validate", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigValidateCommand_Invalid(t *testing.T) {
	cfgPath, _ := writeConfig(t, -5)

	_, err := execute(t, "config", "validate", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retention.max_age_seconds")
}

func TestConfigValidateCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "config", "validate", filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got["version"])
	assert.NotEmpty(t, got["go_version"])
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	assert.True(t, strings.HasSuffix(formatBytes(3<<30), "GiB"))
}
