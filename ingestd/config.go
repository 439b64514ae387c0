package ingestd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full docmill service configuration.
type Config struct {
	Listen        string `yaml:"listen"`
	DBPath        string `yaml:"db_path"`
	AssetsDir     string `yaml:"assets_dir"`
	AssetsBaseURL string `yaml:"assets_base_url"`
	InboxDir      string `yaml:"inbox_dir"`
	MaxFileMB     int    `yaml:"max_file_mb"`
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	Workers       int    `yaml:"workers"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:        ":8086",
		DBPath:        "docmill.db",
		AssetsDir:     "assets",
		AssetsBaseURL: "/assets",
		InboxDir:      "inbox",
		MaxFileMB:     50,
		ChunkSize:     1000,
		ChunkOverlap:  200,
		Workers:       4,
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.AssetsDir == "" {
		return fmt.Errorf("assets_dir is required")
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be > 0")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be >= 0")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be < chunk_size")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	return nil
}

// MaxFileBytes returns max file size in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }
