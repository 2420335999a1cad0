package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher one-way hashes secrets (passwords, one-time codes) with bcrypt
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher; out-of-range costs fall back to bcrypt.DefaultCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check returns nil when secret matches hash
func (h *Hasher) Check(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}
