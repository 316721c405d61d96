package auth

import "strings"

// AdminList is the set of e-mail addresses allowed to use admin endpoints.
type AdminList map[string]bool

// ParseAdminList parses a comma separated e-mail list. Matching is case-insensitive.
func ParseAdminList(s string) AdminList {
	admins := AdminList{}
	for _, e := range strings.Split(s, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = true
		}
	}
	return admins
}

// IsAdmin reports whether email is on the list.
func (a AdminList) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	return a[strings.ToLower(strings.TrimSpace(email))]
}
