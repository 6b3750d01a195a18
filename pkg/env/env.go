package env

import "os"

// Prefix namespaces every variable this service reads.
const Prefix = "TIREDEPOT_"

// Get returns the prefixed variable when set, then the bare name, then
// the fallback. The bare lookup keeps shared tooling like LOG_FORMAT
// working without duplication.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
