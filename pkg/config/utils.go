package config

import (
	"os"
	"path/filepath"
)

// FindEnvFile searches the working directory and its parents for filename,
// defaulting to .env. Load uses it so that cmd/server, cmd/cli and the api
// handler pick up the repository's .env whether they are started from the
// module root or from their own directory (go run ./cmd/cli, go test ./...).
func FindEnvFile(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	startDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	curr := startDir
	for {
		candidate := filepath.Join(curr, filename)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}
	return "", os.ErrNotExist
}
