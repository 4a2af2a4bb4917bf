package cache

import "fmt"

// GenerateKey creates a cache key from a prefix and an id.
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key from a prefix and parameters.
func GenerateKeyWithParams(prefix string, params ...any) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}
