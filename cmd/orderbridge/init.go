package main

import (
	"fmt"
	"os"

	"github.com/printshopos/orderbridge/internal/config"
)

const configTemplate = `# OrderBridge Configuration

printavo:
  # Account email and API token from Printavo -> My Account -> API.
  email: ""
  token: ""
  # Optional: override the GraphQL endpoint.
  base_url: ""

strapi:
  # Base URL of your Strapi instance, e.g. https://cms.example.com
  base_url: ""
  # API token from Strapi -> Settings -> API Tokens.
  token: ""
`

// runInit creates a sample configuration file.
func runInit() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	configPath, err := config.ConfigFilePath()
	if err != nil {
		return fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Println("Created config file:", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit the config file with your credentials")
	fmt.Println("  2. Run 'orderbridge sync --dry-run --once' to test connectivity")
	fmt.Println("  3. Run 'orderbridge import' to migrate existing records")

	return nil
}
