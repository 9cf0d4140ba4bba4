package cache

// Cache defines the interface for the persisted local key/value store that
// survives process restarts. Reads return the supplied default when the key
// is absent. Writes buffer in memory; Save flushes them to the backing
// medium. Only the profile store and the session manager write these keys.
type Cache interface {
	GetString(key, def string) string
	GetInt(key string, def int) int
	GetBool(key string, def bool) bool

	SetString(key, value string)
	SetInt(key string, value int)
	SetBool(key string, value bool)

	Delete(key string)

	// Save flushes buffered writes to the backing store.
	Save() error
}
