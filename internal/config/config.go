package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "TINGXIE_"

// Dataset locates the words dataset.
type Dataset struct {
	// File is the words.json path, relative to Dir when Repo is set.
	File string `koanf:"file" validate:"required"`
	// Repo is an optional git remote holding the dataset.
	Repo string `koanf:"repo"`
	// Dir is the local checkout for Repo.
	Dir string `koanf:"dir" validate:"required_with=Repo"`
	// Sync is the automatic refresh interval in seconds, 0 disables it.
	Sync int `koanf:"sync" validate:"min=0"`
}

// Config is the processed, validated configuration.
type Config struct {
	Listen  string  `koanf:"listen" validate:"required,hostname_port"`
	DB      string  `koanf:"db" validate:"required"`
	Dataset Dataset `koanf:"dataset"`
}

// Flags declares the command-line surface. The flag defaults double as the
// configuration defaults: every later layer only overrides what it sets.
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("tingxie", pflag.ContinueOnError)
	flags.String("config", "", "path to a YAML config file")
	flags.String("listen", "127.0.0.1:8675", "address the API listens on")
	flags.String("db", "tingxie.db", "path to the SQLite database file")
	flags.String("dataset.file", "words.json", "path to the words dataset")
	flags.String("dataset.repo", "", "optional git remote holding the dataset")
	flags.String("dataset.dir", "dataset", "local checkout directory for dataset.repo")
	flags.Int("dataset.sync", 0, "automatic dataset refresh interval in seconds, 0 disables")
	return flags
}

// Load layers the configuration: flag defaults, then the YAML file named
// by -config (if any), then TINGXIE_* environment variables, then flags
// that were explicitly set. The result is validated before use.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// TINGXIE_DATASET_SYNC=60 -> dataset.sync. No key name contains a
	// literal underscore, so the replacement is unambiguous.
	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
