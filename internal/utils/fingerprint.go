package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprintSeparator keeps "a"+"bc" and "ab"+"c" from producing the same
// digest input.
const fingerprintSeparator = 0x1f

// Fingerprint computes a BLAKE2b-256 digest over method, endpoint and payload
// and returns it hex-encoded.
//
// Two writes with the same fingerprint carry the same intent. The digest is
// used to flag duplicate queued writes; it is not a security primitive.
//
// Example usage:
//
//	fp := utils.Fingerprint("CREATE", "/items", []byte(`{"name":"Rice"}`))
func Fingerprint(method, endpoint string, payload []byte) string {
	buf := make([]byte, 0, len(method)+len(endpoint)+len(payload)+2)
	buf = append(buf, method...)
	buf = append(buf, fingerprintSeparator)
	buf = append(buf, endpoint...)
	buf = append(buf, fingerprintSeparator)
	buf = append(buf, payload...)

	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
