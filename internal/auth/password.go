package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	decoyOnce sync.Once
	decoyHash string
)

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DecoyHash returns a bcrypt hash at the same cost as stored passwords. Login
// compares against it when no account matches, so both paths take as long.
func DecoyHash() string {
	decoyOnce.Do(func() {
		decoyHash, _ = HashPassword("designghar:decoy")
	})
	return decoyHash
}
