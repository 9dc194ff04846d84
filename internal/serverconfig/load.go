package serverconfig

// Load builds Settings from three layers, lowest priority first:
// builtin defaults, the TOML file at path (if it exists), and
// COLLABD_*-prefixed environment variables. This is the same
// defaults -> file -> environment order internal/config/layer
// documents for the editor, minus the workspace/language/args/plugin/
// session layers collabd has no use for.
func Load(path string) (Settings, error) {
	merged := defaults()

	if path != "" {
		fileLayer, err := loadTOMLFile(path)
		if err != nil {
			return Settings{}, err
		}
		merged = deepMerge(merged, fileLayer)
	}

	merged = deepMerge(merged, loadEnv())

	return fromMap(merged), nil
}
