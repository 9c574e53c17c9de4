package handler

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"time"

	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

// SubmitAttestationRequest is the HTTP request body for POST /oracle/attestations.
type SubmitAttestationRequest struct {
	Subject string `json:"subject"`
	Value   int64  `json:"value"`
	// ReportedAt is the signed observation time in unix seconds, matching
	// the timestamp field of the signature payload.
	ReportedAt int64  `json:"reported_at"`
	Attestor   string `json:"attestor"`
	// Signature is the base64-encoded ed25519 signature.
	Signature string `json:"signature"`

	parsedSubject   id.PolicyID
	parsedAttestor  id.AttestorID
	parsedSignature []byte
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitAttestationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	subject, err := id.ParsePolicyID(r.Subject)
	if err != nil {
		return err
	}
	r.parsedSubject = subject

	if r.Value <= 0 {
		return dErrors.New(dErrors.CodeValidation, "value must be positive")
	}
	if r.ReportedAt <= 0 {
		return dErrors.New(dErrors.CodeValidation, "reported_at is required")
	}

	attestor, err := id.ParseAttestorID(strings.TrimSpace(r.Attestor))
	if err != nil {
		return err
	}
	r.parsedAttestor = attestor

	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "signature must be base64")
	}
	if len(sig) != ed25519.SignatureSize {
		return dErrors.New(dErrors.CodeValidation, "signature must be a 64-byte ed25519 signature")
	}
	r.parsedSignature = sig

	return nil
}

// ParsedSubject returns the validated subject.
func (r *SubmitAttestationRequest) ParsedSubject() id.PolicyID { return r.parsedSubject }

// ParsedAttestor returns the validated attestor handle.
func (r *SubmitAttestationRequest) ParsedAttestor() id.AttestorID { return r.parsedAttestor }

// ParsedReportedAt returns the signed observation time.
func (r *SubmitAttestationRequest) ParsedReportedAt() time.Time {
	return time.Unix(r.ReportedAt, 0).UTC()
}

// ParsedSignature returns the decoded signature bytes.
func (r *SubmitAttestationRequest) ParsedSignature() []byte { return r.parsedSignature }

// RegisterAttestorRequest is the HTTP request body for POST /oracle/attestors.
type RegisterAttestorRequest struct {
	Attestor string `json:"attestor"`
	// PublicKey is the base64-encoded ed25519 public key.
	PublicKey string `json:"public_key"`
	Stake     int64  `json:"stake"`

	parsedAttestor  id.AttestorID
	parsedPublicKey ed25519.PublicKey
}

// Validate validates and parses the request.
func (r *RegisterAttestorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	attestor, err := id.ParseAttestorID(strings.TrimSpace(r.Attestor))
	if err != nil {
		return err
	}
	r.parsedAttestor = attestor

	key, err := base64.StdEncoding.DecodeString(r.PublicKey)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "public_key must be base64")
	}
	if len(key) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeValidation, "public_key must be a 32-byte ed25519 key")
	}
	r.parsedPublicKey = key

	if r.Stake <= 0 {
		return dErrors.New(dErrors.CodeValidation, "stake must be positive")
	}
	return nil
}

// ParsedAttestor returns the validated attestor handle.
func (r *RegisterAttestorRequest) ParsedAttestor() id.AttestorID { return r.parsedAttestor }

// ParsedPublicKey returns the decoded public key.
func (r *RegisterAttestorRequest) ParsedPublicKey() ed25519.PublicKey { return r.parsedPublicKey }

// StakeRequest is the HTTP request body for POST /oracle/attestors/{id}/stake.
type StakeRequest struct {
	Amount int64 `json:"amount"`
}

// Validate validates the request.
func (r *StakeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

// SlashRequest is the HTTP request body for POST /oracle/attestors/{id}/slash.
type SlashRequest struct {
	EvidenceRef string `json:"evidence_ref"`
}

// Validate validates the request.
func (r *SlashRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.EvidenceRef = strings.TrimSpace(r.EvidenceRef)
	if r.EvidenceRef == "" {
		return dErrors.New(dErrors.CodeValidation, "evidence_ref is required")
	}
	if len(r.EvidenceRef) > 512 {
		return dErrors.New(dErrors.CodeValidation, "evidence_ref must be at most 512 characters")
	}
	return nil
}
