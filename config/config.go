package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds server and export settings.
// Fields not present in the file keep their zero values.
type Config struct {
	Listen     string `yaml:"listen"`
	Dir        string `yaml:"dir"`
	Iso        string `yaml:"iso"`
	Encoding   string `yaml:"encoding"`
	LogDir     string `yaml:"log_dir"`
	TextureDir string `yaml:"texture_dir"`
	ExportDir  string `yaml:"export_dir"`
}

// Flags are command line overrides, empty values are ignored.
type Flags struct {
	Listen   string
	Dir      string
	Iso      string
	Encoding string
	LogDir   string
}

const DefaultListen = ":8000"

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Resolve applies flag overrides and defaults, then activates the configured encoding.
func (c *Config) Resolve(flags Flags) error {
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}
	if flags.Dir != "" {
		c.Dir = flags.Dir
	}
	if flags.Iso != "" {
		c.Iso = flags.Iso
	}
	if flags.Encoding != "" {
		c.Encoding = flags.Encoding
	}
	if flags.LogDir != "" {
		c.LogDir = flags.LogDir
	}

	if c.Listen == "" {
		c.Listen = DefaultListen
	}

	if c.Encoding != "" {
		if err := SetEncoding(c.Encoding); err != nil {
			return errors.Wrapf(err, "config: encoding")
		}
	}

	current = *c
	return nil
}

var current Config

// Get returns the last resolved configuration.
func Get() Config {
	return current
}
