package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Profiles  Profiles  `yaml:"profiles"`
	Weights   Weights   `yaml:"weights"`
	Embedding Embedding `yaml:"embedding"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Profiles struct {
	Folder string `yaml:"folder"`
}

type Weights struct {
	Keywords    float64 `yaml:"keywords"`
	Description float64 `yaml:"description"`
	Headline    float64 `yaml:"headline"`
	Threshold   float64 `yaml:"threshold"`
}

type Embedding struct {
	OllamaURL        string `yaml:"ollama_url"`
	HeadlineModel    string `yaml:"headline_model"`
	DescriptionModel string `yaml:"description_model"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for profilelens.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "profilelens")
}

// DataDir returns the XDG data directory for profilelens.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "profilelens")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/profilelens/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'profilelens init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Weights: Weights{
			Keywords:    0.6,
			Description: 0.3,
			Headline:    0.1,
			Threshold:   30.0,
		},
		Embedding: Embedding{
			OllamaURL:        "http://localhost:11434",
			HeadlineModel:    "all-minilm",
			DescriptionModel: "nomic-embed-text",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
