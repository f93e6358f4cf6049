// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access log. It never logs bodies,
// masks credential headers outright and scrubs e-mail addresses and phone
// numbers from the query string and remaining header values.
//
// Request IDs and report IDs are UUIDs that operators correlate on, so they
// are left intact unless RedactOptions.RedactIDs is set.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists extra header names (case-insensitive) whose values are
	// replaced by "[REDACTED]", on top of Authorization, Cookie, Set-Cookie
	// and X-Api-Key.
	MaskHeaders []string
	// SkipPaths are route paths that are not logged, e.g. /health, /metrics.
	SkipPaths []string
	// RedactIDs also scrubs UUID-looking values.
	RedactIDs bool
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so UUID hex groups never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

type redactor struct {
	ids  bool
	mask map[string]struct{}
}

func newRedactor(opts RedactOptions) redactor {
	mask := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
		"x-api-key":     {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mask[h] = struct{}{}
		}
	}
	return redactor{ids: opts.RedactIDs, mask: mask}
}

// scrub replaces PII-looking substrings. UUIDs go first so the phone pattern
// cannot eat their digit groups.
func (r redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	if r.ids {
		s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
		return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	}
	return scrubPhonesOutsideIDs(s)
}

// scrubPhonesOutsideIDs applies phoneRE only to the text between UUIDs.
func scrubPhonesOutsideIDs(s string) string {
	locs := uuidRE.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(phoneRE.ReplaceAllString(s[prev:loc[0]], "[REDACTED:phone]"))
		b.WriteString(s[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(phoneRE.ReplaceAllString(s[prev:], "[REDACTED:phone]"))
	return b.String()
}

func (r redactor) headers(in map[string][]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, vv := range in {
		if _, ok := r.mask[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger logs one structured line per request: info for 2xx/3xx,
// warn for 4xx and error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	r := newRedactor(opts)
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		query := r.scrub(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := r.headers(c.Request.Header)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
