package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when no account matches, so that the
// authenticate path costs the same whether or not the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// An empty hash (federated-only account) never matches.
func CheckPassword(hash string, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPassword performs a throwaway bcrypt comparison. Callers use it to
// keep timing flat when the looked-up account does not exist.
func BurnPassword(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
