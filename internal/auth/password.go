package auth

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a fixed, configured cost factor.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way hash of the plaintext. Each call produces
// a distinct hash for the same input.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext produced the stored hash. Malformed
// stored hashes verify as false rather than erroring.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
