package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/reportdesk/internal/report"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaultsWhenNothingConfigured(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{
		File:      "",
		DotEnv:    filepath.Join(dir, ".env"),
		LookupEnv: noEnv,
	})
	// The default config file may exist on a developer machine; only assert
	// when it does not.
	if _, statErr := os.Stat(DefaultFile()); statErr == nil {
		t.Skip("user config file present")
	}
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, report.GeneralReport, cfg.InitialMode())
	require.NoError(t, cfg.Validate())
}

func TestLoadLayersYAMLDotEnvAndEnv(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
endpoint: http://reports.internal:8080/
timeout: 90s
mode: book_report
export_dir: /tmp/exports
debug: true
`), 0o644))
	dotEnvPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotEnvPath, []byte("REPORTDESK_EXPORT_DIR=/srv/exports\nREPORTDESK_TIMEOUT=30s\n"), 0o644))

	cfg, err := Load(Options{
		File:   yamlPath,
		DotEnv: dotEnvPath,
		LookupEnv: envMap(map[string]string{
			"REPORTDESK_TIMEOUT": "45s",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://reports.internal:8080/", cfg.Endpoint)
	assert.Equal(t, DefaultDiscardPath, cfg.DiscardPath)
	assert.Equal(t, 45*time.Second, cfg.Timeout, "process env wins over .env")
	assert.Equal(t, "/srv/exports", cfg.ExportDir, ".env wins over YAML")
	assert.Equal(t, report.BookReport, cfg.InitialMode())
	assert.True(t, cfg.Debug)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(Options{
		File:      filepath.Join(t.TempDir(), "missing.yaml"),
		DotEnv:    filepath.Join(t.TempDir(), ".env"),
		LookupEnv: noEnv,
	})
	require.Error(t, err)
}

func TestLoadRejectsBadEnvDuration(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("mode: general_report\n"), 0o644))
	_, err := Load(Options{
		File:      yamlPath,
		DotEnv:    filepath.Join(dir, ".env"),
		LookupEnv: envMap(map[string]string{"REPORTDESK_TIMEOUT": "soon"}),
	})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "relative endpoint", mutate: func(c *Config) { c.Endpoint = "/generate" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "essay" }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
