package flash

import "hash/crc32"

// Checksum computes the 32-bit integrity check a header's `crc`
// field is validated against. hash/crc32 is used the same way
// for module-ID reverse lookup (kernel/threads/registry/loader.go);
// here it verifies payload integrity instead of hashing an identifier.
func Checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}
