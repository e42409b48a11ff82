// Package config handles lgbtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/zonelayer/pkg/encoding"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all lgbtool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Export  ExportConfig  `yaml:"export"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig controls record decoding.
type DecodeConfig struct {
	Charset    string `yaml:"charset"`      // charset of record text, see package encoding
	FailOnSkip bool   `yaml:"fail_on_skip"` // exit non-zero when any record is skipped
	Workers    int    `yaml:"workers"`      // 0 = GOMAXPROCS
}

// ExportConfig controls dump output.
type ExportConfig struct {
	Format string `yaml:"format"`
	Indent int    `yaml:"indent"`
}

// DataConfig holds layer file locations.
type DataConfig struct {
	Paths []string `yaml:"paths"` // files checked when none are given
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Charset: encoding.UTF8,
		},
		Export: ExportConfig{
			Format: FormatJSON,
			Indent: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate reports settings no command can run with.
func (c *Config) Validate() error {
	if _, err := encoding.Lookup(c.Decode.Charset); err != nil {
		return fmt.Errorf("%w: decode.charset: %v", ErrInvalidConfig, err)
	}
	switch c.Export.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: export.format %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Export.Indent < 0 {
		return fmt.Errorf("%w: export.indent %d", ErrInvalidConfig, c.Export.Indent)
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("%w: decode.workers %d", ErrInvalidConfig, c.Decode.Workers)
	}
	return nil
}
