// Package signature canonicalizes and verifies attestation payloads.
//
// A submission is valid only when its Ed25519 signature covers the RFC 8785
// canonical JSON of (subject, value, timestamp, attestor). Canonicalization
// matters: two JSON encodings of the same payload must verify identically
// regardless of key order or whitespace, or honest attestors get rejected on
// encoding differences.
package signature

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gowebpki/jcs"
	"golang.org/x/crypto/hkdf"

	id "surety/pkg/domain"
)

// Payload is the exact structure an attestor signs over.
type Payload struct {
	Subject string `json:"subject"`
	Value   int64  `json:"value"`
	// Timestamp is the observation time in unix seconds, so the signed
	// bytes are independent of timezone or sub-second formatting.
	Timestamp int64  `json:"timestamp"`
	Attestor  string `json:"attestor"`
}

// Canonical returns the RFC 8785 canonical bytes of the payload that binds
// (subject, value, timestamp, submitter).
func Canonical(subject id.PolicyID, value int64, reportedAt time.Time, attestor id.AttestorID) ([]byte, error) {
	raw, err := json.Marshal(Payload{
		Subject:   subject.String(),
		Value:     value,
		Timestamp: reportedAt.Unix(),
		Attestor:  attestor.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return canonical, nil
}

// Verify reports whether sig is a valid signature by pub over the canonical
// payload.
func Verify(pub ed25519.PublicKey, subject id.PolicyID, value int64, reportedAt time.Time, attestor id.AttestorID, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	msg, err := Canonical(subject, value, reportedAt, attestor)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, msg, sig), nil
}

// Sign produces a signature over the canonical payload. Used by attestor
// client tooling and tests.
func Sign(priv ed25519.PrivateKey, subject id.PolicyID, value int64, reportedAt time.Time, attestor id.AttestorID) ([]byte, error) {
	msg, err := Canonical(subject, value, reportedAt, attestor)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, msg), nil
}

// DeriveKeypair derives a deterministic Ed25519 keypair for an attestor
// handle from a master seed using HKDF-SHA256. Fixtures and local tooling
// use this so test identities are reproducible without key files.
func DeriveKeypair(masterSeed []byte, handle id.AttestorID) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if len(masterSeed) == 0 {
		return nil, nil, fmt.Errorf("master seed must not be empty")
	}
	r := hkdf.New(sha256.New, masterSeed, []byte("surety-attestor-kdf"), []byte(handle))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, nil, fmt.Errorf("hkdf derivation failed: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv, nil
}
