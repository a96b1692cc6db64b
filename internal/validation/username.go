package validation

import "strings"

// UsernameFromEmail derives a username candidate from the local part of an
// email address: lowercased and stripped down to [a-z0-9._-]. Collisions
// are resolved by the caller (appending -2, -3, ...). An address whose
// local part sanitizes to nothing yields "user".
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)

	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
