package batchcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key hashes the ordered ticker universe. Order matters because the
// cached rows follow input order.
func Key(universe []string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(universe, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
