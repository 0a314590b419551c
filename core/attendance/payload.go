package attendance

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// Scanned payload format, bit-exact: MARKER|<year>|<term>|<subjectId>|<code>.
const (
	payloadSep    = "|"
	payloadFields = 5
)

// BuildPayload renders the string encoded into the displayed QR code.
func BuildPayload(marker string, key SessionKey, code string) string {
	return strings.Join([]string{marker, key.Year, key.Term, key.SubjectID, code}, payloadSep)
}

// ParsePayload validates and splits a scanned payload.
// Every non-marker field must be a safe key segment.
func ParsePayload(marker, payload string) (SessionKey, string, error) {
	parts := strings.Split(payload, payloadSep)
	if len(parts) != payloadFields {
		return SessionKey{}, "", errors.Wrap(ErrInvalidPayload, "field count")
	}
	if parts[0] != marker {
		return SessionKey{}, "", errors.Wrap(ErrInvalidPayload, "unknown marker")
	}
	for _, seg := range parts[1:] {
		if !core.ValidKeySegment(seg) {
			return SessionKey{}, "", errors.Wrap(ErrInvalidPayload, "unsafe segment")
		}
	}
	key := SessionKey{Year: parts[1], Term: parts[2], SubjectID: parts[3]}
	return key, parts[4], nil
}

// ValidSessionKey reports whether every segment of the key is store-safe.
func ValidSessionKey(key SessionKey) bool {
	return core.ValidKeySegment(key.Year) &&
		core.ValidKeySegment(key.Term) &&
		core.ValidKeySegment(key.SubjectID)
}
