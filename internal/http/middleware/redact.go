package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

const masked = "[REDACTED]"

// UUIDs are replaced before phone numbers; the phone pattern would otherwise
// eat the digit groups of an ID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrub replaces identifiers in free text.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

type redactor struct {
	maskHeaders map[string]struct{} // canonical names
	maskParams  map[string]struct{} // lower-cased
}

func newRedactor(headers, params []string) redactor {
	r := redactor{
		maskHeaders: map[string]struct{}{
			"Authorization": {},
			"Cookie":        {},
			"Set-Cookie":    {},
			"X-Api-Key":     {},
		},
		maskParams: map[string]struct{}{
			"password":     {},
			"token":        {},
			"access_token": {},
		},
	}
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			r.maskHeaders[http.CanonicalHeaderKey(h)] = struct{}{}
		}
	}
	for _, p := range params {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			r.maskParams[p] = struct{}{}
		}
	}
	return r
}

// query rewrites a raw query with masked or scrubbed values. Keys come out
// sorted and values unescaped, which is fine for logs. An unparsable query is
// scrubbed as plain text.
func (r redactor) query(raw string) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return scrub(raw)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		_, mask := r.maskParams[strings.ToLower(k)]
		for _, v := range vals[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			if mask {
				b.WriteString(masked)
			} else {
				b.WriteString(scrub(v))
			}
		}
	}
	return b.String()
}

func (r redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.maskHeaders[http.CanonicalHeaderKey(k)]; ok {
			out[k] = masked
			continue
		}
		out[k] = scrub(strings.Join(vv, ", "))
	}
	return out
}
