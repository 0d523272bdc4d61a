package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(WithCost(4)) // min cost keeps the test fast

	hash, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals plaintext")
	}

	if err := h.Verify("correct-horse-battery", hash); err != nil {
		t.Errorf("Verify rejected correct password: %v", err)
	}
	if err := h.Verify("wrong-password-here", hash); err == nil {
		t.Error("Verify accepted wrong password")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))
	if _, err := h.Hash("short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := h.Hash(string(long)); err == nil {
		t.Error("expected error for password over bcrypt limit")
	}
}

func TestWithCostIgnoresOutOfRange(t *testing.T) {
	h := NewBcryptHasher(WithCost(99))
	if h.cost != 12 {
		t.Errorf("expected default cost 12 for out-of-range option, got %d", h.cost)
	}
}
