package pipeline

import (
	"strconv"
	"strings"
)

const VideoExt = ".mp4"

// SanitizeName replaces every character outside [A-Za-z0-9] with "_" and
// lower-cases the result. Characters outside the Basic Multilingual Plane,
// such as most emoji, count as two UTF-16 code units and become "__".
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r > 0xFFFF:
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// LocalFileName is the on-disk name for a token's video. Tokens without a
// display name fall back to nft_<id>.
func LocalFileName(displayName string, tokenID int) string {
	if displayName == "" {
		return "nft_" + strconv.Itoa(tokenID) + VideoExt
	}
	return SanitizeName(displayName) + VideoExt
}

// SourceURI is the canonical per-token URI recorded in the report.
func SourceURI(baseURI string, tokenID int) string {
	base := strings.TrimSuffix(baseURI, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/" + strconv.Itoa(tokenID)
}
