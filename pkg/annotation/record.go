package annotation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecord reads a metadata record from a JSON document on disk.
func LoadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %q: %w", path, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %q: %w", path, err)
	}

	return record, nil
}
