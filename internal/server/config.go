package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings loaded from YAML.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":9191".
	HTTPAddr string `yaml:"http_addr"`

	// AuthToken, when set, is required as a Bearer token on every API
	// request. Health and metrics endpoints stay open.
	AuthToken string `yaml:"auth_token"`

	// SeedPath points to a JSON snapshot imported at startup.
	SeedPath string `yaml:"seed_path"`
}

// LoadConfig reads and parses the YAML configuration file from the given path.
// It uses Strict Mode (KnownFields) to prevent silent errors due to typos.
// An empty path returns a zero config so flags alone can drive the server.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	// Allow ${VAR} references so tokens can live in the environment.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	return &config, nil
}
