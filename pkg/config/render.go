package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"filetamer/pkg/errors"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Render serializes cfg as a yaml, toml or json document that Load accepts
// back unchanged.
func Render(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		return toml.Marshal(cfg)
	case "json":
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
	return nil, errors.Newf(errors.ErrConfigUnsupported, "unsupported output format %q", format)
}
