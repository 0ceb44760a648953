package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// idLowerBound and idSpan bound the random element id space:
// [100, 2^32) rendered as uppercase 8-hex.
const idLowerBound = 100

var idSpan = new(big.Int).Sub(
	new(big.Int).Lsh(big.NewInt(1), 32),
	big.NewInt(idLowerBound),
)

// NewElementID allocates a fresh 8-hex-digit id unused by (kind) within
// lib, retrying on collisions; after 10000 colliding draws it returns an
// error.
func NewElementID(lib *Library, kind ElementKind) (string, error) {
	for attempt := 0; attempt < 10000; attempt++ {
		n, err := rand.Int(rand.Reader, idSpan)
		if err != nil {
			return "", fmt.Errorf("allocating element id: %w", err)
		}
		n.Add(n, big.NewInt(idLowerBound))
		id := fmt.Sprintf("%08X", n.Uint64())
		if _, ok := lib.Get(kind, id); !ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocating element id: exhausted retries for kind %s", kind)
}
