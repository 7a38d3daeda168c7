package config

import "net/url"

// RedactURL masks the password component of a connection URL so the
// effective configuration can be printed safely. Unparseable input is
// fully masked.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<redacted>"
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
