package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	discTokenRe = regexp.MustCompile(`(?i)(?:dis[ck]|cd)[ _\-]?(\d{1,3})`)
	numTokenRe  = regexp.MustCompile(`\b(\d{1,3})\b`)
	yearTokenRe = regexp.MustCompile(`\b\d{4}\b`)
)

// TrackAndDiscFromFilename pulls track and disc numbers out of an audio
// filename. The disc comes from a cd/disc token; the track is the first
// standalone number of at most three digits once the disc token and any
// four-digit year are removed. Nil means no number was found.
func TrackAndDiscFromFilename(filename string) (track, disc *int) {
	name := filename
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}

	if m := discTokenRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			disc = &n
		}
		name = strings.Replace(name, m[0], "", 1)
	}

	name = yearTokenRe.ReplaceAllString(name, "")

	if m := numTokenRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			track = &n
		}
	}
	return track, disc
}
