package abuse

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"

	"github.com/osa911/waitlist/internal/ua"
)

// FingerprintInput collects the client attributes a fingerprint is built from.
type FingerprintInput struct {
	UserAgent string
	Language  string
	Timezone  string
	Screen    string
	RemoteIP  string
}

// Fingerprint returns a 32 hex character hash for abuse correlation. It is
// not an identity: unrelated visitors behind one network with the same
// browser collide on purpose.
func Fingerprint(in FingerprintInput) string {
	info := ua.Parse(in.UserAgent)
	parts := []string{
		info.Browser,
		info.OS,
		info.Platform,
		info.Device,
		strings.ToLower(strings.TrimSpace(in.Language)),
		strings.TrimSpace(in.Timezone),
		strings.TrimSpace(in.Screen),
		networkPrefix(in.RemoteIP),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:32]
}

// networkPrefix keeps the /24 of an IPv4 address or the /48 of an IPv6 one.
func networkPrefix(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}
