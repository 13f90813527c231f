// Package checksum provides the keyed 64-bit hash used for document ids
// and artifact segment checksums.
package checksum

import (
	"fmt"

	"github.com/minio/highwayhash"
)

// key is fixed so hashes are stable across runs and machines.
var key = []byte("kbase-highwayhash-key-0123456789")

// Hash returns the HighwayHash-64 of data.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// String returns the hash of s formatted as 16 hex digits.
// The key length is constant, so hashing cannot fail here.
func String(s string) string {
	sum, err := Hash([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("checksum: %v", err))
	}
	return fmt.Sprintf("%016x", sum)
}
