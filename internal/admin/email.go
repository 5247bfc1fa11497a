package admin

import "strings"

// IsAdminEmail reports whether email matches the configured admin address.
// An empty admin address never matches.
func IsAdminEmail(email, adminEmail string) bool {
	want := normalizeEmail(adminEmail)
	if want == "" {
		return false
	}
	return normalizeEmail(email) == want
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
