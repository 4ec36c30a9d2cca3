package termmap

import (
	"fmt"
	"hash/maphash"
)

var seed = maphash.MakeSeed()

// hashAny hashes any comparable key by its default string representation.
// This is the "reasonable default for byte-string keys" the associative
// term map contract calls for; term-map keys in this package are always
// plain strings, so the formatting cost is negligible.
func hashAny[K comparable](key K) uint64 {
	return maphash.Bytes(seed, []byte(fmt.Sprintf("%v", key)))
}
