package util

import "regexp"

var (
	bearerPattern   = regexp.MustCompile(`(?i)\bBearer\s+[^\s"',]+`)
	keyValuePattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|password|access[_-]?token|refresh[_-]?token|private[_-]?key)("?\s*[:=]\s*"?)([^\s"',}]+)`)
	privateKeyBlock = regexp.MustCompile(`(?is)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)
	jwtPattern      = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.?[a-zA-Z0-9_-]*`)
	scopedKey       = regexp.MustCompile(`sk-(?:proj|svcacct|admin)-[A-Za-z0-9_-]{20,}`)
	skPattern       = regexp.MustCompile(`(?i)sk-[a-z0-9]{20,}`)
)

// RedactSecrets removes credentials that vendors echo back in error bodies
// and that appear in request headers.
func RedactSecrets(input string) string {
	out := bearerPattern.ReplaceAllString(input, "Bearer [REDACTED]")
	out = keyValuePattern.ReplaceAllString(out, `$1$2[REDACTED]`)
	out = privateKeyBlock.ReplaceAllString(out, "[REDACTED PRIVATE KEY]")
	out = jwtPattern.ReplaceAllString(out, "[REDACTED JWT]")
	out = scopedKey.ReplaceAllString(out, "[REDACTED KEY]")
	out = skPattern.ReplaceAllString(out, "[REDACTED KEY]")
	return out
}

// BodyPreview returns a redacted response body cut to at most maxBytes,
// suitable for logging.
func BodyPreview(raw []byte, maxBytes int) string {
	preview, truncated := TruncateBytes(RedactSecrets(string(raw)), maxBytes)
	if truncated {
		preview += "...(truncated)"
	}
	return preview
}
