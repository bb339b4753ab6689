package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle.
func Shuffle(n int, swap func(i, j int)) error {
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		swap(i, int(jBig.Int64()))
	}
	return nil
}

// Sample returns k distinct indices drawn uniformly without replacement from [0, n).
// If k >= n all indices are returned in random order.
func Sample(n, k int) ([]int, error) {
	if k > n {
		k = n
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if err := Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	}); err != nil {
		return nil, err
	}

	return indices[:k], nil
}

// Token returns size random bytes for opaque identifiers.
func Token(size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return buf, nil
}
