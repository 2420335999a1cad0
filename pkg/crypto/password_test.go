package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "secret" {
		t.Fatalf("expected hash to differ from plaintext")
	}
	if err := h.Check(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := h.Check(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, _ := h.Hash("123456")
	second, _ := h.Hash("123456")
	if first == second {
		t.Fatalf("expected distinct salted hashes for the same code")
	}
}

func TestInvalidCostFallsBack(t *testing.T) {
	h := NewHasher(99)
	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d (%v)", cost, err)
	}
}
