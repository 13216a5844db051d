package normalize

import (
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
)

// CanonicalMAC strips '.', ':', '-' and uppercases, expecting exactly 12 hex
// nibbles. If the stripped string is not 12 hex characters, the input is
// returned unchanged and ok is false — downstream code then treats it as an
// unclassified string.
func CanonicalMAC(raw string) (canonical string, ok bool) {
	stripped := strings.NewReplacer(".", "", ":", "", "-", "").Replace(raw)
	stripped = strings.ToUpper(stripped)
	if len(stripped) != 12 || !isHex(stripped) {
		return raw, false
	}
	return stripped, true
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// LooksLikeMAC reports whether s canonicalizes to a valid 12-hex MAC,
// without returning the canonical form.
func LooksLikeMAC(s string) bool {
	_, ok := CanonicalMAC(s)
	return ok
}

// RenderMAC renders a canonical (12 hex, uppercase, no separators) MAC in
// one of three display forms. An invalid canonical value is returned
// unchanged.
func RenderMAC(canonical string, form model.MACForm) string {
	if len(canonical) != 12 || !isHex(canonical) {
		return canonical
	}
	switch form {
	case model.MACFormIEEE:
		return joinGroups(canonical, 2, ":", strings.ToUpper)
	case model.MACFormCisco:
		return joinGroups(strings.ToLower(canonical), 4, ".", nil)
	case model.MACFormUnix:
		return joinGroups(strings.ToLower(canonical), 2, ":", nil)
	default:
		return canonical
	}
}

func joinGroups(s string, groupSize int, sep string, transform func(string) string) string {
	var groups []string
	for i := 0; i < len(s); i += groupSize {
		g := s[i : i+groupSize]
		groups = append(groups, g)
	}
	out := strings.Join(groups, sep)
	if transform != nil {
		out = transform(out)
	}
	return out
}
