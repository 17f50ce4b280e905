package services

import (
	"crypto/rand"
	"math/big"
)

// URL-safe alphabet, same 64 symbols nanoid uses.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// CodeGenerator produces candidate short codes.
type CodeGenerator func(length int) (string, error)

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
