package query

import "strings"

// readOnlyPrefixes are the statement keywords treated as read-only.
// EXPLAIN and PRAGMA are included because SQLite answers both without
// touching data.
var readOnlyPrefixes = []string{
	"SELECT",
	"WITH",
	"DESCRIBE",
	"SHOW",
	"EXPLAIN",
	"PRAGMA",
}

// IsCacheable reports whether a statement is safe to serve from cache.
// The check is purely textual: leading whitespace and SQL comments are
// skipped, then the first keyword is compared case-insensitively. The
// cache itself never second-guesses this decision.
func IsCacheable(sql string) bool {
	head := strings.ToUpper(stripLeadingComments(sql))
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(head, prefix) {
			return true
		}
	}
	return false
}

// stripLeadingComments returns sql with leading whitespace, line comments
// and block comments removed.
func stripLeadingComments(sql string) string {
	s := strings.TrimSpace(sql)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			return s
		}
	}
}
