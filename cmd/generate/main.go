// generate writes the JSON schemas of the service configuration and the
// backtest request body to the config directory, plus a sample config YAML
// wired to its schema for editor completion.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/marketloop/backtestd/internal/api"
	"github.com/marketloop/backtestd/internal/config"
)

const (
	configSchemaName  = "backtestd-config.json"
	requestSchemaName = "backtest-request.json"
	sampleConfigName  = "backtestd-config.yaml"
	outputDir         = "config"
)

func main() {
	configSchema, err := config.JSONSchema()
	if err != nil {
		log.Fatalf("Failed to generate config schema: %v", err)
	}

	requestSchema, err := api.BacktestRequestSchema()
	if err != nil {
		log.Fatalf("Failed to generate request schema: %v", err)
	}

	configSchemaPath := filepath.Join(outputDir, configSchemaName)
	requestSchemaPath := filepath.Join(outputDir, requestSchemaName)
	sampleConfigPath := filepath.Join(outputDir, sampleConfigName)

	if err := validatePaths(configSchemaPath, sampleConfigPath); err != nil {
		log.Fatalf("Invalid output paths: %v", err)
	}

	if err := generateSchemaFile(configSchema, configSchemaPath); err != nil {
		log.Fatalf("Failed to write config schema: %v", err)
	}
	log.Printf("Config schema generated at %s", configSchemaPath)

	if err := generateSchemaFile(requestSchema, requestSchemaPath); err != nil {
		log.Fatalf("Failed to write request schema: %v", err)
	}
	log.Printf("Request schema generated at %s", requestSchemaPath)

	if err := generateSampleConfig(config.DefaultConfig(), sampleConfigPath, configSchemaName); err != nil {
		log.Fatalf("Failed to write sample config: %v", err)
	}
	log.Printf("Sample config available at %s", sampleConfigPath)
}

// generateSchemaFile writes one schema document, creating the parent
// directory when needed.
func generateSchemaFile(schema, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", path, err)
	}

	return nil
}

// generateSampleConfig writes cfg as YAML with a yaml-language-server schema
// reference on the first line. An existing file is left untouched so local
// edits survive regeneration.
func generateSampleConfig(cfg config.Config, path, schemaName string) error {
	if err := validateSchemaName(schemaName); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to %s: %w", path, err)
	}

	return nil
}

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(schemaName string) error {
	if schemaName == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(schemaName, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", schemaName)
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}
