package backup

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Exclusion patterns:
//   - *.tmp, *.log      no slash: matched against the base name
//   - .git/, build/     trailing slash: matches a directory anywhere in the path
//   - docs/*.pdf        contains a slash: matched against the whole relative path
//   - **/cache/*        ** crosses directory boundaries, also at the root

type ruleKind int

const (
	ruleBase ruleKind = iota
	ruleDir
	rulePath
)

type excludeRule struct {
	kind  ruleKind
	globs []glob.Glob
}

// Excluder decides which source files are left out of a backup
type Excluder struct {
	rules []excludeRule
}

// NewExcluder compiles the patterns; an invalid pattern is an error
func NewExcluder(patterns []string) (*Excluder, error) {
	x := &Excluder{}

	for _, raw := range patterns {
		p := filepath.ToSlash(strings.TrimSpace(raw))
		if p == "" {
			continue
		}

		kind := ruleBase
		switch {
		case strings.HasSuffix(p, "/"):
			kind = ruleDir
			p = strings.TrimSuffix(p, "/")
		case strings.Contains(p, "/"):
			kind = rulePath
		}

		alternatives := []string{p}
		if strings.HasPrefix(p, "**/") {
			alternatives = append(alternatives, strings.TrimPrefix(p, "**/"))
		}

		rule := excludeRule{kind: kind}
		for _, alt := range alternatives {
			g, err := glob.Compile(alt, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
			}
			rule.globs = append(rule.globs, g)
		}
		x.rules = append(x.rules, rule)
	}

	return x, nil
}

// Match reports whether the relative path is excluded
func (x *Excluder) Match(relativePath string) bool {
	if x == nil || len(x.rules) == 0 {
		return false
	}

	rel := filepath.ToSlash(relativePath)
	base := path.Base(rel)

	for _, r := range x.rules {
		switch r.kind {
		case ruleBase:
			if r.matchAny(base) {
				return true
			}
		case rulePath:
			if r.matchAny(rel) {
				return true
			}
		case ruleDir:
			if r.matchDir(rel) {
				return true
			}
		}
	}

	return false
}

func (r excludeRule) matchAny(s string) bool {
	for _, g := range r.globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// matchDir tests every parent directory of rel, both as a single
// component and as a path prefix
func (r excludeRule) matchDir(rel string) bool {
	dir := path.Dir(rel)
	if dir == "." {
		return false
	}

	parts := strings.Split(dir, "/")
	for i := range parts {
		if r.matchAny(parts[i]) || r.matchAny(strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}
