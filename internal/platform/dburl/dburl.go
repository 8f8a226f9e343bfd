// Package dburl adjusts Postgres connection strings for lib/pq. Both URL
// (postgres://...) and key/value (host=... dbname=...) forms are accepted.
package dburl

import (
	"net/url"
	"strings"
)

type Options struct {
	// DisablePreparedBinary sets disable_prepared_binary_result=yes, which
	// transaction poolers such as PgBouncer and Supavisor need.
	DisablePreparedBinary bool
	ApplicationName       string
}

// Apply adds the options that the connection string does not already set.
// Explicit values in raw always win.
func Apply(raw string, opts Options) string {
	params := make([][2]string, 0, 2)
	if opts.DisablePreparedBinary {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if name := strings.TrimSpace(opts.ApplicationName); name != "" {
		params = append(params, [2]string{"application_name", name})
	}
	if len(params) == 0 {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		for _, p := range params {
			if query.Get(p[0]) == "" {
				query.Set(p[0], p[1])
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	if !strings.Contains(trimmed, "=") {
		return raw
	}
	existing := keyValues(trimmed)
	var b strings.Builder
	b.WriteString(trimmed)
	for _, p := range params {
		if _, ok := existing[p[0]]; ok {
			continue
		}
		b.WriteString(" ")
		b.WriteString(p[0])
		b.WriteString("=")
		b.WriteString(p[1])
	}
	return b.String()
}

// DatabaseName returns the database a connection string targets, or "".
func DatabaseName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	return keyValues(trimmed)["dbname"]
}

func keyValues(dsn string) map[string]string {
	out := make(map[string]string)
	for _, token := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}
