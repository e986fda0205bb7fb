package search

import (
	"regexp"
	"strings"
)

// Filter is the structured form of one raw search input.
type Filter struct {
	Song   string
	Artist string
	Album  string
}

// IsZero reports whether no field is set.
func (f Filter) IsZero() bool {
	return f.Song == "" && f.Artist == "" && f.Album == ""
}

// Request converts the filter into a recording search request.
func (f Filter) Request(limit int) Request {
	return Request{
		Kind:   KindRecording,
		Title:  f.Song,
		Artist: f.Artist,
		Album:  f.Album,
		Limit:  limit,
	}
}

// Prefix patterns, one per field, each matched independently against the
// original input so the order prefixes appear in does not matter. Group 1
// captures a quoted value, group 2 an unquoted one; the value must be
// followed by another word: token or the end of the input. When a prefix
// occurs more than once, the first occurrence wins.
var (
	songPattern   = fieldPattern("s")
	artistPattern = fieldPattern("aa")
	albumPattern  = fieldPattern("al")

	fullyQuoted = regexp.MustCompile(`^"([^"]+)"$`)
)

func fieldPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)` + prefix + `:(?:"([^"]+)"|([^"\s]+))(?:\s+\w+:|\s*$)`)
}

// Parse turns a raw search string into a Filter. It never fails: input
// with no recognizable prefix becomes a song-title search, and empty or
// whitespace-only input yields a zero Filter.
//
// Grammar: whitespace-separated tokens, where `s:`, `aa:` and `al:`
// introduce the song, artist and album fields. A value is either a
// double-quoted string (spaces allowed) or a single unquoted token.
// A malformed quote simply fails to match and leaves the field unset.
func Parse(raw string) Filter {
	f := Filter{
		Song:   extract(songPattern, raw),
		Artist: extract(artistPattern, raw),
		Album:  extract(albumPattern, raw),
	}

	if f.IsZero() {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return f
		}
		// No prefix matched: the whole input is a song title. Strip one
		// enclosing pair of quotes when the entire input is quoted.
		if m := fullyQuoted.FindStringSubmatch(trimmed); m != nil {
			f.Song = strings.TrimSpace(m[1])
		} else {
			f.Song = trimmed
		}
	}

	return f
}

func extract(pattern *regexp.Regexp, raw string) string {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}
