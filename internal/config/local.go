package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".orderbridge"
	configFileName = "config.yaml"
)

// LocalConfig holds configuration loaded from a local file.
type LocalConfig struct {
	Printavo localPrintavoConfig
	Strapi   localStrapiConfig
}

// localConfig represents the local configuration file structure.
type localConfig struct {
	Printavo localPrintavo `yaml:"printavo"`
	Strapi   localStrapi   `yaml:"strapi"`
}

// localPrintavo represents the printavo section of the config file.
type localPrintavo struct {
	BaseURL string `yaml:"base_url"`
	Email   string `yaml:"email"`
	Token   string `yaml:"token"`
}

// localPrintavoConfig holds Printavo credentials from the config file.
type localPrintavoConfig struct {
	BaseURL string
	Email   string
	Token   string
}

// localStrapi represents the strapi section of the config file.
type localStrapi struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// localStrapiConfig holds Strapi credentials from the config file.
type localStrapiConfig struct {
	BaseURL string
	Token   string
}

// ConfigDir returns the orderbridge configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigFilePath returns the path to the local config file.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadLocal loads configuration from the local config file.
func LoadLocal() (*LocalConfig, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'orderbridge init' to create)", configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var local localConfig
	if err := yaml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &LocalConfig{}
	cfg.Printavo.BaseURL = local.Printavo.BaseURL
	cfg.Printavo.Email = local.Printavo.Email
	cfg.Printavo.Token = local.Printavo.Token
	cfg.Strapi.BaseURL = local.Strapi.BaseURL
	cfg.Strapi.Token = local.Strapi.Token

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LocalConfigExists checks if a local config file exists.
func LocalConfigExists() bool {
	configPath, err := ConfigFilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(configPath)
	return err == nil
}

// validate checks that required fields are set.
func (c *LocalConfig) validate() error {
	var errs []error

	if c.Printavo.Email == "" {
		errs = append(errs, errors.New("printavo.email is required"))
	}
	if c.Printavo.Token == "" {
		errs = append(errs, errors.New("printavo.token is required"))
	}
	if c.Strapi.BaseURL == "" {
		errs = append(errs, errors.New("strapi.base_url is required"))
	}
	if c.Strapi.Token == "" {
		errs = append(errs, errors.New("strapi.token is required"))
	}

	return errors.Join(errs...)
}
