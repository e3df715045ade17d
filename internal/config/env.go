package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the first .env file found near the
// working directory. A missing file is not an error, deployments set
// variables through the environment itself. Variables already set in
// the environment win over the file.
func LoadEnv() error {
	candidates := []string{
		".env",
		".env.local",
		"../.env",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return nil
}
