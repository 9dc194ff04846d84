package serverconfig

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// loadTOMLFile mirrors internal/config/loader.TOMLLoader.LoadFrom: a
// missing file is not an error, it just contributes nothing to the
// layer stack.
func loadTOMLFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var parsed map[string]any
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return parsed, nil
}
