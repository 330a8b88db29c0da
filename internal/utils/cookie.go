package utils

import (
	"net"
	"net/url"
	"strings"
)

// CookieDomain returns the domain attribute for cookies issued to the site
// at siteURL. Development, loopback and IP hosts get an empty domain so the
// browser scopes the cookie to the exact host.
func CookieDomain(production bool, siteURL string) string {
	if !production || siteURL == "" {
		return ""
	}

	parsable := siteURL
	if !strings.HasPrefix(parsable, "http://") && !strings.HasPrefix(parsable, "https://") {
		parsable = "https://" + parsable
	}
	parsed, err := url.Parse(parsable)
	if err != nil {
		return ""
	}

	host := parsed.Hostname()
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	if len(parts) >= 3 && parts[0] == "www" {
		parts = parts[1:]
	}
	// Root domain with a leading dot so www and apex share the cookie
	return "." + parts[len(parts)-2] + "." + parts[len(parts)-1]
}
