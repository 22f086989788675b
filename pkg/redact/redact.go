// Package redact masks personal data before it reaches the logs.
package redact

import (
	"net"
	"strings"
	"unicode/utf8"
)

const maskChar = "*"

// Email keeps the first two characters of the local part and of the
// domain label, and the full top-level suffix.
//
//	"john.doe@example.com" -> "jo******@ex*****.com"
func Email(email string) string {
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return keep(email, 0)
	}

	name, suffix, hasSuffix := strings.Cut(domain, ".")
	masked := keep(local, 2) + "@" + keep(name, 2)
	if hasSuffix {
		masked += "." + suffix
	}
	return masked
}

// IP hides the host part of an address: the last two octets of IPv4, the
// last four groups of IPv6. Anything unparsable is half masked.
//
//	"203.0.113.7" -> "203.0.*.*"
func IP(ip string) string {
	if ip == "" {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return keep(ip, utf8.RuneCountInString(ip)/2)
	}
	if v4 := parsed.To4(); v4 != nil {
		parts := strings.Split(v4.String(), ".")
		return parts[0] + "." + parts[1] + ".*.*"
	}
	groups := strings.Split(parsed.String(), ":")
	if len(groups) <= 4 {
		return keep(parsed.String(), len(parsed.String())/2)
	}
	visible := groups[:len(groups)-4]
	return strings.Join(visible, ":") + ":*:*:*:*"
}

// keep masks every rune after the first n.
func keep(s string, n int) string {
	length := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + strings.Repeat(maskChar, length-n)
}
