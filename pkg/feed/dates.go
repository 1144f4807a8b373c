package feed

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when the feed library couldn't parse a date.
// covers RFC 2822 variants seen in podcast feeds and RFC 3339 variants seen in Atom.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, _2 Jan 2006 15:04:05 -0700",
	"Mon, _2 Jan 2006 15:04:05 MST",
	"Mon, _2 Jan 2006 15:04 -0700",
	"Mon, _2 Jan 2006 15:04 MST",
	"_2 Jan 2006 15:04:05 -0700",
	"_2 Jan 2006 15:04:05 MST",
	"Mon, _2 January 2006 15:04:05 -0700",
	"Mon, _2 January 2006 15:04:05 MST",
	"Mon, _2 Jan 06 15:04:05 -0700",
	"Mon, _2 Jan 2006",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses a free-text feed date, returns nil if no layout matches
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// some feeds write "GMT+0000" or "UT", normalize the common oddities
	value = strings.Replace(value, "GMT+0000", "+0000", 1)
	if strings.HasSuffix(value, " UT") {
		value += "C"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// laterOf returns the later of the two dates, nil-safe
func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
