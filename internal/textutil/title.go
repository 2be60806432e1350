package textutil

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	episodePattern = regexp.MustCompile(`(?i)^(.+?)[\s._-]+(s\d{1,2}e\d{1,3})`)
	leadingTags    = regexp.MustCompile(`^(\s*\[[^\]]*\])+`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// DeriveTitle builds a display title from a media path. It prefers
// "Series - SxxExx", then the leading name up to the first tag block (keeping
// a parenthesized year intact), then the bare filename.
func DeriveTitle(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	bare := strings.TrimSuffix(base, filepath.Ext(base))
	if bare == "" {
		bare = base
	}

	if m := episodePattern.FindStringSubmatch(bare); m != nil {
		if series := cleanName(leadingTags.ReplaceAllString(m[1], "")); series != "" {
			return Normalize(series + " - " + strings.ToUpper(m[2]))
		}
	}
	if prefix := cleanName(leadingPrefix(bare)); prefix != "" {
		return Normalize(prefix)
	}
	return Normalize(bare)
}

// leadingPrefix strips release-group tags and cuts at the first bracket or
// brace block, or right after the first closed parenthetical.
func leadingPrefix(name string) string {
	s := strings.TrimSpace(leadingTags.ReplaceAllString(name, ""))
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		case '[', '{':
			if depth == 0 {
				return s[:i]
			}
		}
	}
	return s
}

// cleanName turns dotted or underscored release names into spaced words.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, " ") {
		s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	}
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.Trim(s, " -._")
}

// Normalize returns s in Unicode NFC with surrounding whitespace removed.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
