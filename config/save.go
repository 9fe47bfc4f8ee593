package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveGlobal writes a key to ~/.config/ticketflow/config.yaml, creating
// the file if needed. Secrets and unknown keys are refused.
func SaveGlobal(key, value string) error {
	if err := checkSaveKey(key, GlobalKeys); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return upsertYAML(path, key, value, 0o600)
}

// SaveLocal writes a key to .ticketflow.yaml at the project root.
func SaveLocal(projectRoot, key, value string) error {
	if projectRoot == "" {
		return fmt.Errorf("project root not found")
	}
	if err := checkSaveKey(key, LocalKeys); err != nil {
		return err
	}

	// Local config is committed and shared, hence readable.
	path := filepath.Join(projectRoot, LocalConfigName)
	return upsertYAML(path, key, value, 0o644)
}

// DeleteGlobalKey removes a key from the global config. Deleting a key
// that is not set is not an error.
func DeleteGlobalKey(key string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}

	delete(existing, key)

	data, err = yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func checkSaveKey(key string, valid []string) error {
	if contains(SecretKeys, key) {
		return fmt.Errorf("%s is a secret; set %s%s in the environment or .env instead",
			key, EnvPrefix, strings.ToUpper(key))
	}
	if !contains(valid, key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(valid, ", "))
	}
	return nil
}

func upsertYAML(path, key, value string, perm os.FileMode) error {
	var existing map[string]any
	if data, readErr := os.ReadFile(path); readErr == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]any)
	}

	existing[key] = parseValue(value)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue converts string values to appropriate YAML types.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
