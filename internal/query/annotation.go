package query

import (
	"regexp"
	"strings"
)

// Annotation is a parsed @cache directive from a statement's comments.
//
// Supported forms:
//
//	-- @cache skip
//	-- @cache invalidate=users,posts
//
// `skip` keeps a read-only statement out of the cache. `invalidate` lists
// patterns to invalidate after the statement executes successfully;
// it is typically attached to write statements.
type Annotation struct {
	Skip       bool
	Invalidate []string
}

var (
	cacheDirectiveRegex = regexp.MustCompile(`@cache\s+([^\n]+)`)
	invalidateRegex     = regexp.MustCompile(`invalidate=([^\s]+)`)
)

// ParseAnnotation extracts the @cache directive from a statement's
// comment lines. Returns nil when the statement carries none.
func ParseAnnotation(sql string) *Annotation {
	var directive string
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "--") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}
		if matches := cacheDirectiveRegex.FindStringSubmatch(trimmed); len(matches) == 2 {
			directive = strings.TrimSuffix(strings.TrimSpace(matches[1]), "*/")
			break
		}
	}
	if directive == "" {
		return nil
	}

	ann := &Annotation{}
	for _, field := range strings.Fields(directive) {
		if field == "skip" {
			ann.Skip = true
		}
	}
	if matches := invalidateRegex.FindStringSubmatch(directive); len(matches) == 2 {
		for _, p := range strings.Split(matches[1], ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				ann.Invalidate = append(ann.Invalidate, trimmed)
			}
		}
	}
	return ann
}
