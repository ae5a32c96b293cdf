package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const CurrentConfigSchema = 1

const (
	AckOptimistic = "optimistic"
	AckConfirmed  = "confirmed"
)

const (
	EnvAPIURL   = "LASTIMPORT_API_URL"
	EnvPageSize = "LASTIMPORT_PAGE_SIZE"
)

type APIConfig struct {
	BaseURL string   `json:"base_url" yaml:"base_url"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// FetchConfig is the retry policy for loading the snapshot. Zero retries
// means a failed fetch is reported immediately.
type FetchConfig struct {
	MaxRetries      int      `json:"max_retries" yaml:"max_retries"`
	InitialInterval Duration `json:"initial_interval" yaml:"initial_interval"`
	MaxInterval     Duration `json:"max_interval" yaml:"max_interval"`
}

type TableConfig struct {
	PageSize int `json:"page_size" yaml:"page_size"`
}

type ReimportConfig struct {
	AckMode string `json:"ack_mode" yaml:"ack_mode"`
}

type TUIConfig struct {
	PopoverMaxIndicators int      `json:"popover_max_indicators" yaml:"popover_max_indicators"`
	NoticeTTL            Duration `json:"notice_ttl" yaml:"notice_ttl"`
}

type Config struct {
	Schema   int            `json:"schema" yaml:"schema"`
	API      APIConfig      `json:"api" yaml:"api"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Table    TableConfig    `json:"table" yaml:"table"`
	Reimport ReimportConfig `json:"reimport" yaml:"reimport"`
	TUI      TUIConfig      `json:"tui" yaml:"tui"`
	LogDir   string         `json:"log_dir,omitempty" yaml:"log_dir,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Schema: CurrentConfigSchema,
		API: APIConfig{
			BaseURL: "http://localhost:3333",
			Timeout: Duration{10 * time.Second},
		},
		Fetch: FetchConfig{
			MaxRetries:      0,
			InitialInterval: Duration{500 * time.Millisecond},
			MaxInterval:     Duration{5 * time.Second},
		},
		Table:    TableConfig{PageSize: 10},
		Reimport: ReimportConfig{AckMode: AckOptimistic},
		TUI: TUIConfig{
			PopoverMaxIndicators: 0,
			NoticeTTL:            Duration{6 * time.Second},
		},
		LogDir: defaultLogDir(),
	}
}

// Load reads the first config file found, applies environment overrides and
// validates the result. Missing files fall back to the defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		paths = append(paths, filepath.Join(xdgConfig, "lastimport", name))
	}

	return paths
}

func defaultLogDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "lastimport")
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.Table.PageSize = n
	}
	return nil
}

func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()

	if len(c.LogDir) > 0 && c.LogDir[0] == '~' {
		c.LogDir = filepath.Join(home, c.LogDir[1:])
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url: missing host")
	}
	if c.API.Timeout.Duration < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("table.page_size must be positive, got %d", c.Table.PageSize)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must not be negative, got %d", c.Fetch.MaxRetries)
	}
	switch c.Reimport.AckMode {
	case AckOptimistic, AckConfirmed:
	default:
		return fmt.Errorf("reimport.ack_mode: unknown mode %q", c.Reimport.AckMode)
	}
	if c.TUI.PopoverMaxIndicators < 0 {
		return fmt.Errorf("tui.popover_max_indicators must not be negative")
	}
	return nil
}

func (c *Config) LogPath() string {
	return filepath.Join(c.LogDir, "lastimport.log")
}
