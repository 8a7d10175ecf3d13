// Package config loads the optional YAML settings file. A missing file is
// not an error; baked-in defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zoec98/story-scraper/webclient"
)

// DefaultPath is where settings live relative to the working directory.
const DefaultPath = ".storyscraper/settings.yaml"

// Settings represents the YAML configuration structure.
type Settings struct {
	StoriesRoot    string `yaml:"stories_root"`
	UserAgent      string `yaml:"user_agent"`
	MinDelayMS     int    `yaml:"min_delay_ms"`
	MaxDelayMS     int    `yaml:"max_delay_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func defaults() *Settings {
	return &Settings{
		StoriesRoot:    "stories",
		MinDelayMS:     200,
		MaxDelayMS:     1200,
		TimeoutSeconds: 30,
	}
}

// Load reads settings from path, falling back to defaults when the file
// does not exist. Fields absent from the file keep their defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}

	settings := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	if settings.StoriesRoot == "" {
		settings.StoriesRoot = "stories"
	}
	if settings.MaxDelayMS < settings.MinDelayMS {
		settings.MaxDelayMS = settings.MinDelayMS
	}
	return settings, nil
}

// ClientConfig translates the settings into a web client configuration.
func (s *Settings) ClientConfig() webclient.Config {
	cfg := webclient.Config{
		Timeout:  time.Duration(s.TimeoutSeconds) * time.Second,
		MinDelay: time.Duration(s.MinDelayMS) * time.Millisecond,
		MaxDelay: time.Duration(s.MaxDelayMS) * time.Millisecond,
	}
	if s.UserAgent != "" {
		cfg.Headers = map[string]string{"User-Agent": s.UserAgent}
	}
	return cfg
}

// EnsureExists writes a commented default settings file when none is
// present, so users have something to edit.
func EnsureExists(path string) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultSettings := `stories_root: stories
# user_agent: ""
min_delay_ms: 200
max_delay_ms: 1200
timeout_seconds: 30
`
	if err := os.WriteFile(path, []byte(defaultSettings), 0644); err != nil {
		return fmt.Errorf("failed to write default settings: %w", err)
	}
	return nil
}
