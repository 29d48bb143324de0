package logging

import (
	"net/url"
	"regexp"
	"strings"
)

var segmentSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// redactor hides sensitive values in log key-value pairs.
type redactor struct {
	sensitiveWords map[string]bool
}

func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "key", "auth", "credential"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks flattened key-value pairs and returns a copy where values of
// sensitive keys are replaced with "[REDACTED]". URL values lose their
// userinfo, so a cdp_url with embedded credentials never reaches disk.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = "[REDACTED]"
			continue
		}
		if s, ok := result[i+1].(string); ok {
			result[i+1] = stripUserinfo(s)
		}
	}
	return result
}

// isSensitive reports whether key contains a sensitive word as a separate
// segment. Segments are split on non-alphanumeric characters.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range segmentSplitter.Split(strings.ToLower(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}

func stripUserinfo(value string) string {
	if !strings.Contains(value, "://") || !strings.Contains(value, "@") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	u.User = url.User("REDACTED")
	return u.String()
}
