package claims

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-idp-bridge/internal/utils"
)

// MetadataClaim holds Zitadel user metadata. Its values are base64 encoded.
const MetadataClaim = "urn:zitadel:iam:user:metadata"

// DecodeRoles looks for an encoded role list in the metadata claim and, when
// present, stores it as a string list under RolesClaim. The blob is decoded,
// stripped of double quotes and split on commas. m is left untouched when the
// metadata or its roles entry is absent, or when decoding fails.
func DecodeRoles(m Map) error {
	meta, ok := m[MetadataClaim].Map()
	if !ok {
		return nil
	}
	encoded, ok := meta[RolesClaim]
	if !ok || !encoded.Truthy() {
		return nil
	}
	s, ok := encoded.Str()
	if !ok {
		return fmt.Errorf("metadata roles: expected a string, got %v", encoded)
	}
	b, err := utils.DecodeBase64(s)
	if err != nil {
		return fmt.Errorf("metadata roles: %w", err)
	}
	m[RolesClaim] = List(strings.Split(strings.ReplaceAll(string(b), `"`, ""), ",")...)
	return nil
}
