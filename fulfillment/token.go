package fulfillment

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes gives 256 bits of entropy per download token.
const tokenBytes = 32

// mintToken returns a fresh unguessable download token as a 64-character hex
// string. Uniqueness across the store is enforced at insert time.
func mintToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; if it does, the
		// process must not issue guessable credentials.
		panic("failed to read random bytes for download token: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
