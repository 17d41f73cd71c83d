package internal

// Option configures the serve entrypoint before Run builds the storage,
// index, and HTTP surfaces from it.
type Option func(*application)

// application collects everything Run needs; today that is just the parsed
// site configuration.
type application struct {
	config *Config
}

// WithConfig supplies the validated configuration for the blog tree, index,
// and HTTP server.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
