// Package token hashes and verifies room join tokens. The digest is a plain
// sha256 hex string so the host UI can compute the same value in any runtime.
package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/karaokenatin/roomsync/pkg/randstr"
)

const (
	roomIdLength    = 21
	joinTokenLength = 32
)

// nanoid-compatible alphabet, same as the host app uses for its room codes.
var generator = randstr.New([]byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"))

func Hash(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

func Verify(token string, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(token)), []byte(digest)) == 1
}

func GenerateRoomId() string {
	return generator.GenerateRandomString(roomIdLength)
}

func GenerateJoinToken() string {
	return generator.GenerateRandomString(joinTokenLength)
}
