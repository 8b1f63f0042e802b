// Package wallet provides Solana keypair handling and address checks.
// Raw key material never leaves this package: callers hand payloads to
// Signer.Sign and get signatures back.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"regexp"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-sniper/internal/domain"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// addressPattern matches the base58 alphabet at Solana address lengths.
var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// ValidAddress reports whether s looks like a Solana address: base58
// alphabet, length 32-44, decodes to exactly 32 bytes.
func ValidAddress(s string) bool {
	if !addressPattern.MatchString(s) {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == ed25519.PublicKeySize
}

// OnCurve reports whether the address decodes to a point on the ed25519
// curve. Wallet addresses are curve points; program-derived addresses
// are deliberately off-curve.
func OnCurve(address string) (bool, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return false, fmt.Errorf("%w: decode address: %v", domain.ErrValidation, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: address is %d bytes, want %d", domain.ErrValidation, len(raw), ed25519.PublicKeySize)
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil, nil
}

// Signer holds an ed25519 keypair and signs transaction payloads.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// Generate creates a new random keypair.
func Generate() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Signer{priv: priv, pub: pub}, nil
}

// FromSeed restores a signer from a 32-byte seed.
func FromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", domain.ErrValidation, len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

// Address returns the base58-encoded public key.
func (s *Signer) Address() string {
	return base58.Encode(s.pub)
}

// Sign signs an opaque payload and returns the signature.
func (s *Signer) Sign(payload []byte) []byte {
	return ed25519.Sign(s.priv, payload)
}

// Verify checks a signature produced by Sign.
func (s *Signer) Verify(payload, sig []byte) bool {
	return ed25519.Verify(s.pub, payload, sig)
}

// State describes the wallet connection lifecycle exposed to the API.
type State struct {
	Connected bool
	Address   string
	Balance   float64 // SOL
}

// Disconnected is the initial wallet state.
var Disconnected = State{}
