package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 10 keeps login latency reasonable while remaining salted and
// cost-factored.
const hashCost = 10

// HashPassword derives a one-way salted hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
