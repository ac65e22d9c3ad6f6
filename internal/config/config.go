package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"singapore-family-venues-scraper/internal/services"
)

type Config struct {
	Model      ModelConfig              `toml:"model"`
	Render     RenderConfig             `toml:"render"`
	Output     OutputConfig             `toml:"output"`
	Heuristics services.DiscoveryConfig `toml:"heuristics"`
}

type ModelConfig struct {
	Name        string   `toml:"name"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float32  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
}

type RenderConfig struct {
	Disabled bool     `toml:"disabled"`
	Timeout  Duration `toml:"timeout"`
}

type OutputConfig struct {
	Path        string `toml:"path"`
	ImagesDir   string `toml:"images_dir"`
	CounterFile string `toml:"counter_file"`
	S3Bucket    string `toml:"s3_bucket"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:        "gpt-4o-mini",
			MaxTokens:   4000,
			Temperature: 0.0,
			Timeout:     Duration{60 * time.Second},
		},
		Render: RenderConfig{
			Timeout: Duration{90 * time.Second},
		},
		Output: OutputConfig{
			Path:        "listings.json",
			ImagesDir:   "",
			CounterFile: "data/listing_counter.txt",
		},
		Heuristics: services.DefaultDiscoveryConfig(),
	}
}

// LoadConfig reads a TOML config file, falling back to defaults when the
// file does not exist. Fields absent from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return config, nil
}
