package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error in field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (errs ValidationErrors) HasErrors() bool {
	return len(errs) > 0
}

// ConfigLoadOptions provides options for loading configuration
type ConfigLoadOptions struct {
	Root              string
	Path              string
	AllowMissing      bool
	ValidateStructure bool
	ApplyDefaults     bool
	LoadEnv           bool
	Quiet             bool
}

// DefaultLoadOptions returns the options used by the generator commands: the
// config file is optional, .env and MODULAR_* overrides are applied.
func DefaultLoadOptions(root string) ConfigLoadOptions {
	return ConfigLoadOptions{
		Root:              root,
		Path:              DefaultConfigFile,
		AllowMissing:      true,
		ValidateStructure: true,
		ApplyDefaults:     true,
		LoadEnv:           true,
		Quiet:             true,
	}
}

// ConfigManager handles configuration loading, validation, and management
type ConfigManager struct {
	options ConfigLoadOptions
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(options ConfigLoadOptions) *ConfigManager {
	if options.Root == "" {
		options.Root = "."
	}
	if options.Path == "" {
		options.Path = DefaultConfigFile
	}
	return &ConfigManager{
		options: options,
	}
}

// ConfigPath returns the resolved config file path
func (cm *ConfigManager) ConfigPath() string {
	if filepath.IsAbs(cm.options.Path) {
		return cm.options.Path
	}
	return filepath.Join(cm.options.Root, cm.options.Path)
}

// LoadConfig loads and validates the configuration
func (cm *ConfigManager) LoadConfig() (*ProjectConfig, error) {
	path := cm.ConfigPath()

	var config *ProjectConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !cm.options.AllowMissing {
			return nil, fmt.Errorf("configuration file not found: %s\n\nRun 'bun-api-modular config init' to create one", path)
		}
		if !cm.options.Quiet {
			fmt.Printf("⚠️  Configuration file not found at %s, using defaults\n", path)
		}
		config = DefaultConfig(cm.options.Root)
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	default:
		config = &ProjectConfig{}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w\n\nPlease check your YAML syntax", path, err)
		}
	}

	if cm.options.LoadEnv {
		if err := cm.applyEnv(config); err != nil {
			return nil, err
		}
	}

	if cm.options.ApplyDefaults {
		cm.applyDefaults(config)
	}

	if cm.options.ValidateStructure {
		if errs := cm.validateConfig(config); errs.HasErrors() {
			return nil, fmt.Errorf("configuration validation failed:\n%s", cm.formatValidationErrors(errs))
		}
	}

	return config, nil
}

// applyEnv loads <root>/.env (never overriding variables already set) and
// then applies MODULAR_* overrides.
func (cm *ConfigManager) applyEnv(config *ProjectConfig) error {
	dotenv := filepath.Join(cm.options.Root, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}
	return ParseEnv(config)
}

// ParseEnv loads configuration overrides from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// validateConfig performs validation on the configuration
func (cm *ConfigManager) validateConfig(config *ProjectConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Value:   config.Name,
			Message: "project name cannot be empty",
		})
	}

	if config.Port <= 0 || config.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   config.Port,
			Message: "port must be between 1 and 65535",
		})
	}

	required := []struct {
		field string
		value string
	}{
		{"paths.src_dir", config.Paths.SrcDir},
		{"paths.modules_dir", config.Paths.ModulesDir},
		{"paths.routes_dir", config.Paths.RoutesDir},
		{"paths.registry", config.Paths.Registry},
		{"ledger.log", config.Ledger.Log},
		{"ledger.state", config.Ledger.State},
	}
	for _, r := range required {
		if r.value == "" {
			errors = append(errors, ValidationError{
				Field:   r.field,
				Value:   r.value,
				Message: "path cannot be empty",
			})
			continue
		}
		if filepath.IsAbs(r.value) || strings.HasPrefix(filepath.Clean(r.value), "..") {
			errors = append(errors, ValidationError{
				Field:   r.field,
				Value:   r.value,
				Message: "path must stay inside the project directory",
			})
		}
	}

	if !identifierPattern.MatchString(config.Paths.Collection) {
		errors = append(errors, ValidationError{
			Field:   "paths.collection",
			Value:   config.Paths.Collection,
			Message: "collection must be a valid TypeScript identifier",
		})
	}

	if config.Ledger.Log != "" && config.Ledger.Log == config.Ledger.State {
		errors = append(errors, ValidationError{
			Field:   "ledger.state",
			Value:   config.Ledger.State,
			Message: "state document and log must be different files",
		})
	}

	return errors
}

// applyDefaults sets default values for missing configuration fields
func (cm *ConfigManager) applyDefaults(config *ProjectConfig) {
	defaults := DefaultConfig(cm.options.Root)

	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.Port == 0 {
		config.Port = defaults.Port
	}

	if config.Paths.SrcDir == "" {
		config.Paths.SrcDir = defaults.Paths.SrcDir
	}
	if config.Paths.ModulesDir == "" {
		config.Paths.ModulesDir = defaults.Paths.ModulesDir
	}
	if config.Paths.RoutesDir == "" {
		config.Paths.RoutesDir = defaults.Paths.RoutesDir
	}
	if config.Paths.Registry == "" {
		config.Paths.Registry = defaults.Paths.Registry
	}
	if config.Paths.Collection == "" {
		config.Paths.Collection = defaults.Paths.Collection
	}

	if config.Ledger.Log == "" {
		config.Ledger.Log = defaults.Ledger.Log
	}
	if config.Ledger.State == "" {
		config.Ledger.State = defaults.Ledger.State
	}

	if config.Dev.Command == "" {
		config.Dev.Command = defaults.Dev.Command
	}
}

// formatValidationErrors formats validation errors in a user-friendly way
func (cm *ConfigManager) formatValidationErrors(errors ValidationErrors) string {
	var lines []string
	for i, err := range errors {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return strings.Join(lines, "\n")
}

// LoadProject loads the configuration of the project at root with the
// default options.
func LoadProject(root string) (*ProjectConfig, error) {
	return NewConfigManager(DefaultLoadOptions(root)).LoadConfig()
}

// ConfigInfo contains summary information about a configuration
type ConfigInfo struct {
	Path        string
	FromFile    bool
	ProjectName string
	Port        int
	Registry    string
	Collection  string
	ModulesDir  string
	LedgerLog   string
	LedgerState string
	DevCommand  string
}

// GetConfigInfo summarizes cfg, loaded from path.
func GetConfigInfo(path string, cfg *ProjectConfig) *ConfigInfo {
	absPath, _ := filepath.Abs(path)
	_, err := os.Stat(path)

	return &ConfigInfo{
		Path:        absPath,
		FromFile:    err == nil,
		ProjectName: cfg.Name,
		Port:        cfg.Port,
		Registry:    cfg.Paths.Registry,
		Collection:  cfg.Paths.Collection,
		ModulesDir:  cfg.Paths.ModulesDir,
		LedgerLog:   cfg.Ledger.Log,
		LedgerState: cfg.Ledger.State,
		DevCommand:  cfg.Dev.Command,
	}
}

// String returns a formatted string representation of config info
func (info *ConfigInfo) String() string {
	source := info.Path
	if !info.FromFile {
		source += " (not found, defaults)"
	}

	var lines []string
	lines = append(lines, "📋 Configuration Summary")
	lines = append(lines, fmt.Sprintf("   Path: %s", source))
	lines = append(lines, fmt.Sprintf("   Project: %s", info.ProjectName))
	lines = append(lines, fmt.Sprintf("   Port: %d", info.Port))
	lines = append(lines, fmt.Sprintf("   Registry: %s (%s)", info.Registry, info.Collection))
	lines = append(lines, fmt.Sprintf("   Modules: %s", info.ModulesDir))
	lines = append(lines, fmt.Sprintf("   Ledger: %s, %s", info.LedgerLog, info.LedgerState))
	lines = append(lines, fmt.Sprintf("   Dev: %s", info.DevCommand))

	return strings.Join(lines, "\n")
}
