package logging

// ServiceConfig is the logging configuration for the API process: the
// rotated file at path, mirrored to stdout.
func ServiceConfig(level, path string) *Config {
	cfg := DefaultConfig()
	if level != "" {
		cfg.Level = level
	}
	if path != "" {
		cfg.File = path
	}
	return cfg
}
