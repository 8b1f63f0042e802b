package wallet

import (
	"bytes"
	"testing"
)

func TestValidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"wrapped SOL mint", "So11111111111111111111111111111111111111112", true},
		{"USDC mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"empty", "", false},
		{"too short", "abc", false},
		{"contains zero", "0o11111111111111111111111111111111111111112", false},
		{"contains uppercase I", "Io11111111111111111111111111111111111111112", false},
		{"not base58", "not-an-address-at-all!!!!!!!!!!!!!!!!!!!!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidAddress(tt.address); got != tt.want {
				t.Errorf("ValidAddress(%q) = %t, want %t", tt.address, got, tt.want)
			}
		})
	}
}

func TestSignerRoundTrip(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !ValidAddress(s.Address()) {
		t.Errorf("generated address %q fails validation", s.Address())
	}

	payload := []byte("swap transaction payload")
	sig := s.Sign(payload)
	if !s.Verify(payload, sig) {
		t.Error("signature does not verify")
	}
	if s.Verify([]byte("tampered"), sig) {
		t.Error("signature verified against tampered payload")
	}
}

func TestGeneratedAddressOnCurve(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	on, err := OnCurve(s.Address())
	if err != nil {
		t.Fatalf("OnCurve: %v", err)
	}
	if !on {
		t.Error("generated wallet address should be on the ed25519 curve")
	}
}

func TestFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)

	a, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	b, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}

	if a.Address() != b.Address() {
		t.Errorf("same seed produced different addresses: %s vs %s", a.Address(), b.Address())
	}

	if _, err := FromSeed([]byte("short")); err == nil {
		t.Error("expected error for short seed")
	}
}
