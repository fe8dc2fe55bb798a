// Package pkce generates Proof Key for Code Exchange pairs (RFC 7636) and
// encodes the opaque state blob that carries the verifier through the
// provider's authorization redirect.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/internal/utils"
	"golang.org/x/oauth2"
)

// MethodS256 is the only challenge method produced here.
const MethodS256 = "S256"

// verifierBytes random bytes give a 56 character hex verifier, inside the
// 43-128 range RFC 7636 allows.
const verifierBytes = 28

// Pair is a code verifier and the challenge derived from it.
type Pair struct {
	CodeVerifier  string `json:"code_verifier"`
	CodeChallenge string `json:"code_challenge"`
}

// GenerateCodeVerifier returns a fresh hex verifier read from crypto/rand.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ChallengeFromVerifier is base64url(SHA-256(verifier)) without padding.
func ChallengeFromVerifier(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// Generate returns a new verifier/challenge pair.
func Generate() (Pair, error) {
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		CodeVerifier:  verifier,
		CodeChallenge: ChallengeFromVerifier(verifier),
	}, nil
}

// State is the JSON document passed through the provider in the state
// parameter.
type State struct {
	CodeVerifier string `json:"codeVerifier"`
}

// EncodeState returns the padded standard base64 encoding of the state JSON.
func EncodeState(s State) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeState reverses EncodeState. Empty input, bad base64, bad JSON and a
// missing verifier are all reported as errors.ErrInvalidState.
func DecodeState(raw string) (State, error) {
	if raw == "" {
		return State{}, errors.ErrInvalidState
	}
	b, err := utils.DecodeBase64(raw)
	if err != nil {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "decode base64: %v", err)
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "decode json: %v", err)
	}
	if s.CodeVerifier == "" {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "missing codeVerifier")
	}
	return s, nil
}
