package claims_test

import (
	"encoding/base64"
	"testing"

	"github.com/jrsteele09/go-idp-bridge/claims"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := claims.Parse([]byte(`{
		"sub": "u1",
		"email": "u1@x.com",
		"email_verified": true,
		"groups": ["a", "b"],
		"mixed": ["a", 1],
		"updated_at": 0,
		"urn:zitadel:iam:user:metadata": {"roles": "YWRtaW4="},
		"nickname": null
	}`))
	require.NoError(t, err)

	require.Equal(t, "u1", m.String("sub"))
	require.Equal(t, claims.KindOther, m["email_verified"].Kind())
	groups, ok := m["groups"].List()
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, groups)
	require.Equal(t, claims.KindOther, m["mixed"].Kind())
	require.Equal(t, claims.KindNull, m["nickname"].Kind())
	meta, ok := m[claims.MetadataClaim].Map()
	require.True(t, ok)
	require.Equal(t, "YWRtaW4=", meta.String("roles"))

	_, err = claims.Parse([]byte(`[1,2]`))
	require.Error(t, err)
	_, err = claims.Parse([]byte(`null`))
	require.Error(t, err)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    claims.Value
		want bool
	}{
		{"null", claims.Of(nil), false},
		{"empty string", claims.String(""), false},
		{"string", claims.String("x"), true},
		{"empty list", claims.List(), true},
		{"empty map", claims.Nested(nil), true},
		{"false", claims.Of(false), false},
		{"true", claims.Of(true), true},
		{"zero", claims.Of(float64(0)), false},
		{"number", claims.Of(float64(3)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestRecord(t *testing.T) {
	m := claims.Map{
		"sub":   claims.String("u1"),
		"roles": claims.List("admin"),
		"meta":  claims.Nested(claims.Map{"k": claims.String("v")}),
		"n":     claims.Of(float64(2)),
	}
	require.Equal(t, map[string]any{
		"sub":   "u1",
		"roles": []string{"admin"},
		"meta":  map[string]any{"k": "v"},
		"n":     float64(2),
	}, m.Record())
}

func TestRemapPassesUnmappedClaimsThrough(t *testing.T) {
	r := claims.NewRemapper([]claims.FieldMapping{
		{From: "given_name", To: "first_name"},
		{From: "missing", To: "never"},
		{From: "blank", To: "never_either"},
	}, zerolog.Nop())

	in := claims.Map{
		"sub":        claims.String("u1"),
		"given_name": claims.String("Ada"),
		"blank":      claims.String(""),
	}
	out := r.Remap(in)

	require.Equal(t, "u1", out.String("sub"))
	require.Equal(t, "Ada", out.String("given_name"))
	require.Equal(t, "Ada", out.String("first_name"))
	require.NotContains(t, out, "never")
	require.NotContains(t, out, "never_either")
	require.NotContains(t, in, "first_name", "input must not be modified")
}

func TestRemapDecode(t *testing.T) {
	r := claims.NewRemapper([]claims.FieldMapping{
		{From: "org_b64", To: "organisation", Decode: true},
		{From: "broken_b64", To: "broken", Decode: true},
		{From: "list_b64", To: "list", Decode: true},
	}, zerolog.Nop())

	out := r.Remap(claims.Map{
		"org_b64":    claims.String(base64.StdEncoding.EncodeToString([]byte("ACME"))),
		"broken_b64": claims.String("*not base64*"),
		"list_b64":   claims.List("a"),
	})

	require.Equal(t, "ACME", out.String("organisation"))
	require.Equal(t, "*not base64*", out.String("broken"))
	list, ok := out["list"].List()
	require.True(t, ok)
	require.Equal(t, []string{"a"}, list)
}

func TestRemapReadsOriginalClaimsOnly(t *testing.T) {
	r := claims.NewRemapper([]claims.FieldMapping{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
	}, zerolog.Nop())

	out := r.Remap(claims.Map{"a": claims.String("from-a")})

	require.Equal(t, "from-a", out.String("b"))
	require.NotContains(t, out, "c")
}

func TestDecodeRoles(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`"admin","editor"`))
	m := claims.Map{
		claims.MetadataClaim: claims.Nested(claims.Map{"roles": claims.String(encoded)}),
	}

	require.NoError(t, claims.DecodeRoles(m))
	roles, ok := m[claims.RolesClaim].List()
	require.True(t, ok)
	require.Equal(t, []string{"admin", "editor"}, roles)
}

func TestDecodeRolesWithoutMetadata(t *testing.T) {
	m := claims.Map{"sub": claims.String("u1")}
	require.NoError(t, claims.DecodeRoles(m))
	require.NotContains(t, m, claims.RolesClaim)

	m[claims.MetadataClaim] = claims.Nested(claims.Map{"other": claims.String("eA==")})
	require.NoError(t, claims.DecodeRoles(m))
	require.NotContains(t, m, claims.RolesClaim)
}

func TestDecodeRolesMalformed(t *testing.T) {
	m := claims.Map{
		claims.MetadataClaim: claims.Nested(claims.Map{"roles": claims.String("!!")}),
	}
	require.Error(t, claims.DecodeRoles(m))
	require.NotContains(t, m, claims.RolesClaim)
}
