package pkce_test

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/pkce"
	"github.com/stretchr/testify/require"
)

var unreserved = regexp.MustCompile(`^[A-Za-z0-9\-._~]{43,128}$`)

func TestGenerateCodeVerifier(t *testing.T) {
	v1, err := pkce.GenerateCodeVerifier()
	require.NoError(t, err)
	v2, err := pkce.GenerateCodeVerifier()
	require.NoError(t, err)

	require.Regexp(t, unreserved, v1)
	require.Len(t, v1, 56)
	require.NotEqual(t, v1, v2)
}

func TestChallengeFromVerifier(t *testing.T) {
	// RFC 7636 appendix B
	const verifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	const challenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	require.Equal(t, challenge, pkce.ChallengeFromVerifier(verifier))
	require.Equal(t, pkce.ChallengeFromVerifier(verifier), pkce.ChallengeFromVerifier(verifier))
}

func TestGenerate(t *testing.T) {
	p, err := pkce.Generate()
	require.NoError(t, err)
	require.Equal(t, pkce.ChallengeFromVerifier(p.CodeVerifier), p.CodeChallenge)
	require.NotContains(t, p.CodeChallenge, "=")

	q, err := pkce.Generate()
	require.NoError(t, err)
	require.NotEqual(t, p.CodeVerifier, q.CodeVerifier)
}

func TestStateRoundTrip(t *testing.T) {
	p, err := pkce.Generate()
	require.NoError(t, err)

	raw, err := pkce.EncodeState(pkce.State{CodeVerifier: p.CodeVerifier})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	require.JSONEq(t, `{"codeVerifier":"`+p.CodeVerifier+`"}`, string(decoded))

	s, err := pkce.DecodeState(raw)
	require.NoError(t, err)
	require.Equal(t, p.CodeVerifier, s.CodeVerifier)
}

func TestDecodeStateErrors(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"not base64":       "%%%",
		"not json":         base64.StdEncoding.EncodeToString([]byte("nope")),
		"missing verifier": base64.StdEncoding.EncodeToString([]byte(`{"other":"x"}`)),
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pkce.DecodeState(raw)
			require.ErrorIs(t, err, errors.ErrInvalidState)
		})
	}
}
