package resultlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// NextRunDir creates and returns the next numbered run directory under
// parent: 0000 for an empty parent, otherwise one past the highest existing
// four-digit entry. Non-numeric entries are ignored.
func NextRunDir(parent string) (string, error) {
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", fmt.Errorf("listing log directory: %w", err)
	}
	next := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	dir := filepath.Join(parent, fmt.Sprintf("%04d", next))
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}
	return dir, nil
}
