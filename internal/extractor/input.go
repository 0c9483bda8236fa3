package extractor

import (
	"fmt"
	"os"
)

// ReadFile reads the plan at path, refusing files larger than limit bytes
// before reading them. A limit of zero or less disables the check.
func ReadFile(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to open plan: %s is a directory", path)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s: %w: %d bytes, limit %d", path, ErrInputTooLarge, info.Size(), limit)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return data, nil
}
