package links

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var ipv4Pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)$`)

// IsUnsafeRedirectTarget reports whether a resolved destination must not be
// redirected to. It is a pure literal/heuristic denylist over the hostname:
// no DNS resolution happens here, so DNS rebinding is out of scope. Any
// string input is handled without panicking; unparseable input is unsafe.
func IsUnsafeRedirectTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return true
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return true
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	if m := ipv4Pattern.FindStringSubmatch(host); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		switch {
		case a == 127: // loopback
			return true
		case a == 10: // private
			return true
		case a == 172 && b >= 16 && b <= 31: // private
			return true
		case a == 192 && b == 168: // private
			return true
		case a == 169 && b == 254: // link-local
			return true
		case a == 0: // "this network"
			return true
		}
	}

	// IPv6: loopback, unspecified, link-local. url.Hostname strips brackets.
	if host == "::1" || host == "::" || strings.HasPrefix(host, "fe80:") {
		return true
	}

	// Embedded credentials are phishing bait.
	if u.User != nil {
		if u.User.Username() != "" {
			return true
		}
		if _, set := u.User.Password(); set {
			return true
		}
	}

	return false
}
