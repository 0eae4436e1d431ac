package tracker

// Config controls where the tracker keeps its database.
type Config struct {
	// StoragePath is the root directory; the database lives under
	// <StoragePath>/.candela/audits.db.
	StoragePath string
}

// DefaultConfig stores under the current working directory.
func DefaultConfig() *Config {
	return &Config{StoragePath: "."}
}
