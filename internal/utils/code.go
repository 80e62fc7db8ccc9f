package utils

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// GenerateNumericCode returns an n-digit code without a leading zero.
func GenerateNumericCode(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		alphabet := digits
		if i == 0 {
			alphabet = digits[1:]
		}
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
