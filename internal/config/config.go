package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/csheth/reportdesk/internal/report"
)

const (
	DefaultEndpoint    = "http://localhost:5000/"
	DefaultDiscardPath = "/clear_session"
	DefaultTimeout     = 60 * time.Second

	envPrefix = "REPORTDESK_"
)

// Config holds every runtime option of the client.
type Config struct {
	Endpoint    string        `yaml:"endpoint"`
	DiscardPath string        `yaml:"discard_path"`
	Timeout     time.Duration `yaml:"timeout"`
	Mode        string        `yaml:"mode"`
	ExportDir   string        `yaml:"export_dir"`
	LogFile     string        `yaml:"log_file"`
	StateFile   string        `yaml:"state_file"`
	Debug       bool          `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		DiscardPath: DefaultDiscardPath,
		Timeout:     DefaultTimeout,
		Mode:        string(report.GeneralReport),
		ExportDir:   ".",
		StateFile:   defaultStateFile(),
	}
}

// Options controls where Load looks for configuration.
type Options struct {
	// File is the YAML config path. Empty means DefaultFile(); a missing
	// default file is not an error, a missing explicit file is.
	File string
	// DotEnv is the .env path; empty means ".env" in the working directory.
	DotEnv string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load layers defaults, the YAML file, .env, and the process environment.
// Flags are applied afterwards by the caller.
func Load(opts Options) (Config, error) {
	cfg := Default()

	path := opts.File
	explicit := path != ""
	if !explicit {
		path = DefaultFile()
	}
	if path != "" {
		if err := loadAndMerge(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	dotEnvPath := opts.DotEnv
	if dotEnvPath == "" {
		dotEnvPath = ".env"
	}
	dotEnv, err := godotenv.Read(dotEnvPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read %s: %w", dotEnvPath, err)
		}
		dotEnv = map[string]string{}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		key := envPrefix + name
		if value, ok := lookup(key); ok {
			return value, true
		}
		value, ok := dotEnv[key]
		return value, ok
	}
	if err := applyEnv(&cfg, get); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	mergeConfigs(cfg, &override, raw)
	return nil
}

func mergeConfigs(base, override *Config, raw map[string]any) {
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.DiscardPath != "" {
		base.DiscardPath = override.DiscardPath
	}
	if override.Timeout != 0 {
		base.Timeout = override.Timeout
	}
	if override.Mode != "" {
		base.Mode = override.Mode
	}
	if override.ExportDir != "" {
		base.ExportDir = override.ExportDir
	}
	if override.LogFile != "" {
		base.LogFile = override.LogFile
	}
	if override.StateFile != "" {
		base.StateFile = override.StateFile
	}
	if _, ok := raw["debug"]; ok {
		base.Debug = override.Debug
	}
}

func applyEnv(cfg *Config, get func(string) (string, bool)) error {
	strs := map[string]*string{
		"ENDPOINT":     &cfg.Endpoint,
		"DISCARD_PATH": &cfg.DiscardPath,
		"MODE":         &cfg.Mode,
		"EXPORT_DIR":   &cfg.ExportDir,
		"LOG_FILE":     &cfg.LogFile,
		"STATE_FILE":   &cfg.StateFile,
	}
	for name, target := range strs {
		if value, ok := get(name); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	if value, ok := get("TIMEOUT"); ok && strings.TrimSpace(value) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}
	if value, ok := get("DEBUG"); ok && strings.TrimSpace(value) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%sDEBUG: %w", envPrefix, err)
		}
		cfg.Debug = b
	}
	return nil
}

// Validate checks the options the client cannot run without.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute http(s) URL", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := report.ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

// InitialMode returns the parsed mode; call Validate first.
func (c Config) InitialMode() report.Mode {
	mode, err := report.ParseMode(c.Mode)
	if err != nil {
		return report.GeneralReport
	}
	return mode
}

// DefaultFile is ~/.config/reportdesk/config.yaml, or "" when the user
// config dir is unknown.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "reportdesk", "config.yaml")
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "reportdesk", "workspace.json")
	}
	return filepath.Join(dir, "reportdesk", "workspace.json")
}
