package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
)

const (
	StoragePostgres = "postgres"
	StorageBolt     = "bolt"
)

// AllocationDefaults are the option values a bulk allocation uses when the caller
// does not set them. The include flags default to true when omitted.
type AllocationDefaults struct {
	KeepTeamsTogether               bool  `yaml:"keepTeamsTogether"`
	KeepDivisionsTogether           bool  `yaml:"keepDivisionsTogether"`
	KeepTeamsCloseInTime            bool  `yaml:"keepTeamsCloseInTime"`
	IncludeAthletesWithoutTeams     *bool `yaml:"includeAthletesWithoutTeams,omitempty"`
	IncludeAthletesWithoutDivisions *bool `yaml:"includeAthletesWithoutDivisions,omitempty"`
}

// IncludeWithoutTeams reports whether athletes with no team take part by default
func (d AllocationDefaults) IncludeWithoutTeams() bool {
	return d.IncludeAthletesWithoutTeams == nil || *d.IncludeAthletesWithoutTeams
}

// IncludeWithoutDivisions reports whether athletes with no division take part by default
func (d AllocationDefaults) IncludeWithoutDivisions() bool {
	return d.IncludeAthletesWithoutDivisions == nil || *d.IncludeAthletesWithoutDivisions
}

// Config represents the application configuration
type Config struct {
	Storage     string `yaml:"storage" validate:"required,oneof=postgres bolt"`
	DatabaseURL string `yaml:"databaseURL,omitempty" validate:"required_if=Storage postgres"`
	BoltPath    string `yaml:"boltPath,omitempty" validate:"required_if=Storage bolt"`

	// MetricsAddr is the listen address for the Prometheus endpoint in interactive mode
	MetricsAddr string `yaml:"metricsAddr,omitempty" validate:"omitempty,hostname_port"`

	DefaultOptions AllocationDefaults `yaml:"defaultOptions"`

	// DisciplineModes overrides the structural mode of disciplines by name
	DisciplineModes map[string]string `yaml:"disciplineModes,omitempty" validate:"dive,keys,required,endkeys,oneof=single-squad-per-slot single-squad-per-field multi-squad"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(validateDisciplineModes, Config{})
}

// validateDisciplineModes rejects override keys that name the same discipline,
// such as "Five Stand" and "five-stand"
func validateDisciplineModes(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	names := make([]string, 0, len(cfg.DisciplineModes))
	for name := range cfg.DisciplineModes {
		names = append(names, name)
	}
	slices.Sort(names)

	seen := make(map[string]string, len(names))
	for _, name := range names {
		normalized := allocator.NormalizeDisciplineName(name)
		if first, ok := seen[normalized]; ok {
			sl.ReportError(cfg.DisciplineModes, "DisciplineModes", "DisciplineModes", "unique_discipline", first+"|"+name)
			return
		}
		seen[normalized] = name
	}
}

// Load loads and validates the configuration from squad_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment. squad_config.<env>.yaml is
// preferred over squad_config.yaml when it exists. Variables from a .env file are loaded
// first, and DATABASE_URL and SQUAD_BOLT_PATH override the file values.
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if path := os.Getenv("SQUAD_BOLT_PATH"); path != "" {
		cfg.BoltPath = path
	}
}

// findConfigFile searches for the config file in the current directory and home directory
func findConfigFile(env string) (string, error) {
	names := []string{"squad_config.yaml"}
	if env != "" {
		names = append([]string{fmt.Sprintf("squad_config.%s.yaml", env)}, names...)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, dir := range []string{".", homeDir} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
