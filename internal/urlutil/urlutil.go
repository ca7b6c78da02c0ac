// Package urlutil classifies and encodes link destinations.
package urlutil

import (
	"net/url"
	"strings"
)

// IsURL reports whether s is an absolute URL with a network location, such
// as http://host/path. Relative paths and opaque URIs like mailto: are not.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsPotentiallyEncoded reports whether s already contains a percent escape,
// meaning it was most likely written pre-encoded.
func IsPotentiallyEncoded(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2]) {
			return true
		}
	}
	return false
}

// EncodeURI percent-encodes every byte of s outside the URI reserved and
// unreserved sets, leaving the structure of a full URI intact.
func EncodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

// Encode applies the link encoding policy: s is returned unchanged when
// trustEncoded is set and s already looks encoded, otherwise EncodeURI(s).
func Encode(s string, trustEncoded bool) string {
	if trustEncoded && IsPotentiallyEncoded(s) {
		return s
	}
	return EncodeURI(s)
}

const upperHex = "0123456789ABCDEF"

func keep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
