package config

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

const fileHeader = "# fieldmon configuration\n# Generated by 'fieldmon config init'. Edit freely.\n\n"

// Marshal renders cfg as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, refusing to overwrite unless force is set.
func Save(cfg *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config already exists: "+path,
				"Pass --force to overwrite it")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory", "Check permissions on "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write config file", "Check permissions on "+path)
	}
	return nil
}
