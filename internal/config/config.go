package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project configuration file name.
const DefaultConfigFile = "modular.yaml"

type ProjectConfig struct {
	Name   string       `yaml:"name" env:"MODULAR_NAME"`
	Port   int          `yaml:"port" env:"MODULAR_PORT"`
	Paths  PathsConfig  `yaml:"paths" envPrefix:"MODULAR_PATHS_"`
	Ledger LedgerConfig `yaml:"ledger" envPrefix:"MODULAR_LEDGER_"`
	Dev    DevConfig    `yaml:"dev" envPrefix:"MODULAR_DEV_"`
}

// PathsConfig locates the generated source tree, relative to the project root.
type PathsConfig struct {
	SrcDir     string `yaml:"src_dir" env:"SRC_DIR"`
	ModulesDir string `yaml:"modules_dir" env:"MODULES_DIR"`
	RoutesDir  string `yaml:"routes_dir" env:"ROUTES_DIR"`
	Registry   string `yaml:"registry" env:"REGISTRY"`
	Collection string `yaml:"collection" env:"COLLECTION"` // exported array patched on create
}

// LedgerConfig locates the module log and state document.
type LedgerConfig struct {
	Log   string `yaml:"log" env:"LOG"`
	State string `yaml:"state" env:"STATE"`
}

type DevConfig struct {
	Command string `yaml:"command" env:"COMMAND"`
}

// GetDefaultPathsConfig returns the standard project layout
func GetDefaultPathsConfig() PathsConfig {
	return PathsConfig{
		SrcDir:     "src",
		ModulesDir: "src/modules",
		RoutesDir:  "src/routes/api",
		Registry:   "src/routes/api/index.ts",
		Collection: "apiRoutes",
	}
}

// GetDefaultLedgerConfig returns the standard ledger file names
func GetDefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Log:   "modules.log",
		State: "modules.json",
	}
}

// DefaultConfig returns the configuration used when a project has no
// modular.yaml.
func DefaultConfig(root string) *ProjectConfig {
	return &ProjectConfig{
		Name:   projectNameFromDir(root),
		Port:   3000,
		Paths:  GetDefaultPathsConfig(),
		Ledger: GetDefaultLedgerConfig(),
		Dev: DevConfig{
			Command: "bun --watch src/server.ts",
		},
	}
}

func projectNameFromDir(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "my-api"
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "my-api"
	}
	return name
}

// Marshal renders cfg as modular.yaml content
func Marshal(cfg *ProjectConfig) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
