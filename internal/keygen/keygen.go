// Package keygen produces the short random keys used both as user IDs
// and as shortCodes.
package keygen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// KeyLength is the fixed length of every generated key.
const KeyLength = 6

// TriesToGenerateUniqueKey bounds the collision retry loop.
const TriesToGenerateUniqueKey = 10

// Alphabet is the historical key alphabet. The digit '0' appears
// twice, which skews its odds slightly; kept for compatibility with
// existing keys, not as intentional weighting.
const Alphabet = "01234567890qwertyuiopasdfghjklzxcvbnmQWERTYUIOPASDFGHJKLZXCVBNM"

// TakenFunc reports whether a candidate key is already in use.
type TakenFunc func(ctx context.Context, key string) (bool, error)

// Generator issues random keys, retrying past collisions.
type Generator struct {
	isTaken TakenFunc
}

// New returns a Generator that consults isTaken before accepting a
// candidate key. A nil isTaken disables the uniqueness check.
func New(isTaken TakenFunc) *Generator {
	return &Generator{isTaken: isTaken}
}

// NewKey returns a fresh KeyLength-character key that isTaken did not
// veto. Returns models.ErrKeySpaceExhausted after
// TriesToGenerateUniqueKey failed attempts.
func (g *Generator) NewKey(ctx context.Context) (string, error) {
	for i := 0; i < TriesToGenerateUniqueKey; i++ {
		key, err := randomKey()
		if err != nil {
			return "", err
		}

		if g.isTaken == nil {
			return key, nil
		}

		taken, err := g.isTaken(ctx, key)
		if err != nil {
			return "", err
		}
		if !taken {
			return key, nil
		}
	}

	return "", models.ErrKeySpaceExhausted
}

func randomKey() (string, error) {
	result := make([]byte, KeyLength)
	alphabetLen := big.NewInt(int64(len(Alphabet)))
	for i := range result {
		index, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("error generating a random index: %w", err)
		}
		result[i] = Alphabet[index.Int64()]
	}

	return string(result), nil
}
