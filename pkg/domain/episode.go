package domain

import "time"

// NormalizedFeed is the canonical metadata extracted from an RSS/Atom/iTunes feed document
type NormalizedFeed struct {
	Title             string
	Description       string
	Author            string
	LatestEpisodeDate *time.Time
	EpisodeCount      int // entries with an audio enclosure, not capped
	ItemCount         int // all item/entry elements, not capped
	FeedType          FeedType
	CoverImageURL     string
	Categories        []string
	Explicit          bool
	Episodes          []Episode // capped detail list
}

// Episode is a single enclosure-bearing entry of a feed
type Episode struct {
	GUID        string
	Title       string
	AudioURL    string
	AudioType   string
	AudioLength int64
	Duration    string
	Published   *time.Time
}

// FetchResult is the raw outcome of a successful feed download
type FetchResult struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
	Elapsed     time.Duration
}
