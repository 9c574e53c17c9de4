// Package domain defines typed identifiers shared across modules.
//
// IDs are distinct named types so the compiler rejects cross-type assignment
// (an AccountID can never be passed where a PolicyID is expected). Construct
// via the Parse functions at trust boundaries; direct casting bypasses
// validation and is reserved for internal wiring and tests.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "surety/pkg/domain-errors"
)

// AccountID identifies a token-holding account with a compliance profile.
type AccountID uuid.UUID

// PolicyID identifies the attested subject: one tokenized insurance policy.
type PolicyID uuid.UUID

// AttestorID is the registered handle of a valuation reporter. Unlike the
// UUID-backed IDs it is operator-chosen, so it is validated rather than
// parsed: non-empty, at most 64 bytes, printable ASCII without whitespace.
type AttestorID string

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id too long")
	}
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}

// ParseAccountID constructs an AccountID from external input.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}

// ParsePolicyID constructs a PolicyID from external input.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PolicyID{}, err
	}
	return PolicyID(u), nil
}

// ParseAttestorID validates an attestor handle from external input.
func ParseAttestorID(s string) (AttestorID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "attestor id cannot be empty")
	}
	if len(s) > 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "attestor id too long")
	}
	for _, r := range s {
		if r <= ' ' || r > '~' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "attestor id must be printable ascii without whitespace")
		}
	}
	return AttestorID(s), nil
}

func (a AccountID) String() string  { return uuid.UUID(a).String() }
func (p PolicyID) String() string   { return uuid.UUID(p).String() }
func (a AttestorID) String() string { return string(a) }

func (a AccountID) IsNil() bool  { return uuid.UUID(a) == uuid.Nil }
func (p PolicyID) IsNil() bool   { return uuid.UUID(p) == uuid.Nil }
func (a AttestorID) IsNil() bool { return a == "" }

// NewAccountID generates a random AccountID. Test and seed helper.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

// NewPolicyID generates a random PolicyID. Test and seed helper.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }
