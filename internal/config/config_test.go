package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{
		Field:   "test_field",
		Value:   "test_value",
		Message: "test message",
	}

	expectedError := "config validation error in field 'test_field': test message (value: test_value)"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	emptyErrs := ValidationErrors{}
	if emptyErrs.Error() != "no validation errors" {
		t.Errorf("Expected 'no validation errors', got '%s'", emptyErrs.Error())
	}
	if emptyErrs.HasErrors() {
		t.Error("Expected HasErrors() to be false for empty errors")
	}

	errs := ValidationErrors{
		ValidationError{Field: "field1", Value: "value1", Message: "message1"},
		ValidationError{Field: "field2", Value: "value2", Message: "message2"},
	}

	if !errs.HasErrors() {
		t.Error("Expected HasErrors() to be true for non-empty errors")
	}

	errorMsg := errs.Error()
	if !strings.Contains(errorMsg, "field1") || !strings.Contains(errorMsg, "field2") {
		t.Errorf("Expected error message to contain both fields, got '%s'", errorMsg)
	}
}

func TestDefaultLoadOptions(t *testing.T) {
	options := DefaultLoadOptions("/tmp/project")

	if options.Path != "modular.yaml" {
		t.Errorf("Expected default path 'modular.yaml', got '%s'", options.Path)
	}
	if !options.AllowMissing {
		t.Error("Expected AllowMissing to be true by default")
	}
	if !options.ValidateStructure {
		t.Error("Expected ValidateStructure to be true by default")
	}
	if !options.ApplyDefaults {
		t.Error("Expected ApplyDefaults to be true by default")
	}
	if !options.LoadEnv {
		t.Error("Expected LoadEnv to be true by default")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()

	cm := NewConfigManager(ConfigLoadOptions{Root: dir, AllowMissing: false})
	if _, err := cm.LoadConfig(); err == nil {
		t.Error("Expected error for missing file when AllowMissing is false")
	}

	config, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("Expected no error when AllowMissing is true, got %v", err)
	}
	if config.Name != filepath.Base(dir) {
		t.Errorf("Expected project name '%s', got '%s'", filepath.Base(dir), config.Name)
	}
	if config.Paths.Registry != "src/routes/api/index.ts" {
		t.Errorf("Expected default registry path, got '%s'", config.Paths.Registry)
	}
	if config.Paths.Collection != "apiRoutes" {
		t.Errorf("Expected default collection 'apiRoutes', got '%s'", config.Paths.Collection)
	}
	if config.Ledger.Log != "modules.log" || config.Ledger.State != "modules.json" {
		t.Errorf("Expected default ledger paths, got %+v", config.Ledger)
	}
}

func TestLoadConfigValidYAML(t *testing.T) {
	dir := t.TempDir()

	validConfig := `
name: shop-api
port: 8080
paths:
  registry: src/routes/api/index.ts
  collection: apiRoutes
ledger:
  state: .modular/modules.json
`
	if err := os.WriteFile(filepath.Join(dir, "modular.yaml"), []byte(validConfig), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("Expected no error loading valid config, got %v", err)
	}

	if config.Name != "shop-api" {
		t.Errorf("Expected name 'shop-api', got '%s'", config.Name)
	}
	if config.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.Port)
	}
	if config.Ledger.State != ".modular/modules.json" {
		t.Errorf("Expected custom state path, got '%s'", config.Ledger.State)
	}
	// Defaults fill in what the file leaves out
	if config.Ledger.Log != "modules.log" {
		t.Errorf("Expected default log path, got '%s'", config.Ledger.Log)
	}
	if config.Paths.ModulesDir != "src/modules" {
		t.Errorf("Expected default modules dir, got '%s'", config.Paths.ModulesDir)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "modular.yaml"), []byte("name: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProject(dir)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Errorf("Expected parse error, got '%s'", err.Error())
	}
}

func TestLoadConfigValidation(t *testing.T) {
	dir := t.TempDir()
	invalidConfig := `
name: api
port: 70000
paths:
  registry: ../outside.ts
  collection: "api-routes"
ledger:
  log: ledger.txt
  state: ledger.txt
`
	if err := os.WriteFile(filepath.Join(dir, "modular.yaml"), []byte(invalidConfig), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProject(dir)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	for _, field := range []string{"port", "paths.registry", "paths.collection", "ledger.state"} {
		if !strings.Contains(err.Error(), "'"+field+"'") {
			t.Errorf("Expected validation error for field '%s', got '%s'", field, err.Error())
		}
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MODULAR_PORT", "4000")
	t.Setenv("MODULAR_LEDGER_STATE", "state/modules.json")

	config, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.Port != 4000 {
		t.Errorf("Expected port 4000 from env, got %d", config.Port)
	}
	if config.Ledger.State != "state/modules.json" {
		t.Errorf("Expected state path from env, got '%s'", config.Ledger.State)
	}
}

func TestLoadConfigEnvError(t *testing.T) {
	t.Setenv("MODULAR_PORT", "not-an-int")

	_, err := LoadProject(t.TempDir())
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("Expected parse env prefix, got %v", err)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MODULAR_DEV_COMMAND=bun run src/server.ts\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load sets process variables; make sure they are restored.
	t.Setenv("MODULAR_DEV_COMMAND", "")
	os.Unsetenv("MODULAR_DEV_COMMAND")

	config, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.Dev.Command != "bun run src/server.ts" {
		t.Errorf("Expected dev command from .env, got '%s'", config.Dev.Command)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.Port = 5050

	content, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "modular.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject() error = %v", err)
	}
	if loaded.Port != 5050 {
		t.Errorf("Expected port 5050, got %d", loaded.Port)
	}
	if !strings.Contains(content, "collection: apiRoutes") {
		t.Errorf("Expected yaml to contain collection, got:\n%s", content)
	}
}

func TestConfigInfoString(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	info := GetConfigInfo(filepath.Join(dir, "modular.yaml"), cfg)

	out := info.String()
	if !strings.Contains(out, "not found, defaults") {
		t.Errorf("Expected defaults marker, got:\n%s", out)
	}
	if !strings.Contains(out, "src/routes/api/index.ts (apiRoutes)") {
		t.Errorf("Expected registry line, got:\n%s", out)
	}
}
