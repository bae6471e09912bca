package driven

import "time"

// ConfigStore is a flat key/value view over the settings file.
// Keys are dotted paths into nested tables, e.g. "queue.redis.addr".
//
// The typed getters return the zero value when a key is absent or holds
// a value of another type; callers use Get to tell the two apart.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	// GetDuration parses Go duration strings such as "90s".
	GetDuration(key string) time.Duration

	// Set changes a value in memory. Save writes it out.
	Set(key string, value any) error
	Save() error
	// Load discards unsaved changes and rereads the file.
	Load() error
	Path() string
}
