package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.amanignore/logs, or a directory under the system
// temp dir when the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".amanignore", "logs")
	}
	return filepath.Join(home, ".amanignore", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "amanignore.log")
}

// FindLogFile resolves the log file to view: the explicit path when given,
// otherwise the default log path. It fails when the file does not exist.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file found at %s\nRun a command first, e.g.:\n  amanignore --debug scan", path)
	}
	return path, nil
}

// EnsureLogDir creates the default log directory if needed.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
