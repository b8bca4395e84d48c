package credvault

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names read by LoadConfigFromEnvironment.
const (
	EnvStorageBackend = "CREDVAULT_STORAGE_BACKEND"
	EnvStoragePath    = "CREDVAULT_STORAGE_PATH"
	EnvStorageBucket  = "CREDVAULT_STORAGE_BUCKET"
	EnvStoragePrefix  = "CREDVAULT_STORAGE_PREFIX"
	EnvStorageRegion  = "CREDVAULT_STORAGE_REGION"
)

// DefaultDBPath is the SQLite database file used when no path is configured.
const DefaultDBPath = "credvault.db"

// LoadEnvFile loads variables from a .env style file into the process
// environment, skipping silently if the file does not exist. Convenience for
// local development; deployments should set real environment variables.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfigFromEnvironment builds a validated Config from CREDVAULT_*
// environment variables, applying defaults for anything unset.
func LoadConfigFromEnvironment() (Config, error) {
	cfg := Config{
		Storage: StorageConfig{
			Backend: os.Getenv(EnvStorageBackend),
			Path:    os.Getenv(EnvStoragePath),
			Bucket:  os.Getenv(EnvStorageBucket),
			Prefix:  os.Getenv(EnvStoragePrefix),
			Region:  os.Getenv(EnvStorageRegion),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromFile reads and validates a YAML configuration file.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config file: %v", ErrInvalidConfiguration, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse config file: %v", ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
