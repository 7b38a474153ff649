package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSeedFile reads a JSON Snapshot used to populate empty storage.
func LoadSeedFile(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Snapshot
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return &seed, nil
}
