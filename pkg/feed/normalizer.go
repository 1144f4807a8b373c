package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"

	"golang.org/x/net/html/charset"

	"github.com/umputun/podpulse/pkg/domain"
)

// NormalizerConfig holds parsing caps
type NormalizerConfig struct {
	MaxEntries  int // entries examined for episode details
	MaxTextSize int // max runes kept for title and description
}

// Normalizer parses RSS 2.0, iTunes RSS and Atom documents into domain.NormalizedFeed
type Normalizer struct {
	maxEntries  int
	maxTextSize int
	policy      *bluemonday.Policy
}

// NewNormalizer makes a Normalizer, zero config values replaced by defaults
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 50
	}
	if cfg.MaxTextSize <= 0 {
		cfg.MaxTextSize = 4000
	}
	return &Normalizer{maxEntries: cfg.MaxEntries, maxTextSize: cfg.MaxTextSize, policy: bluemonday.StrictPolicy()}
}

// Parse detects the dialect of raw and normalizes it. Failures are *domain.FeedError with
// ErrUnknownFeedFormat or ErrParse category, the parser is never allowed to panic the caller.
func (n *Normalizer) Parse(raw []byte) (res *domain.NormalizedFeed, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, domain.NewFeedError(domain.ErrParse, fmt.Errorf("parser panic: %v", r))
		}
	}()

	if err := checkXML(raw); err != nil {
		return nil, err
	}

	switch gofeed.DetectFeedType(bytes.NewReader(raw)) {
	case gofeed.FeedTypeRSS:
		parsed, perr := (&rss.Parser{}).Parse(bytes.NewReader(raw))
		if perr != nil {
			return nil, domain.NewFeedError(domain.ErrParse, perr)
		}
		return n.fromRSS(parsed), nil
	case gofeed.FeedTypeAtom:
		parsed, perr := (&atom.Parser{}).Parse(bytes.NewReader(raw))
		if perr != nil {
			return nil, domain.NewFeedError(domain.ErrParse, perr)
		}
		return n.fromAtom(parsed), nil
	case gofeed.FeedTypeJSON:
		return nil, domain.NewFeedError(domain.ErrUnknownFeedFormat, errors.New("json feeds are not supported"))
	default:
		return nil, n.unknownFormat(raw)
	}
}

func (n *Normalizer) fromRSS(f *rss.Feed) *domain.NormalizedFeed {
	res := &domain.NormalizedFeed{
		Title:       n.cleanText(f.Title),
		Description: n.cleanText(f.Description),
		ItemCount:   len(f.Items),
		FeedType:    domain.FeedTypeRSS2,
		Episodes:    []domain.Episode{},
	}

	itunes := f.ITunesExt != nil
	for i, item := range f.Items {
		if item.ITunesExt != nil {
			itunes = true
		}
		enc := item.Enclosure
		if enc == nil || strings.TrimSpace(enc.URL) == "" {
			continue // no audio, not an episode
		}
		res.EpisodeCount++
		published := rssItemDate(item)
		res.LatestEpisodeDate = laterOf(res.LatestEpisodeDate, published)
		if i >= n.maxEntries {
			continue
		}

		ep := domain.Episode{
			Title:     n.cleanText(item.Title),
			AudioURL:  strings.TrimSpace(enc.URL),
			AudioType: enc.Type,
			Published: published,
		}
		ep.AudioLength, _ = strconv.ParseInt(strings.TrimSpace(enc.Length), 10, 64)
		if item.GUID != nil {
			ep.GUID = item.GUID.Value
		}
		if ep.GUID == "" {
			ep.GUID = ep.AudioURL
		}
		if item.ITunesExt != nil {
			ep.Duration = item.ITunesExt.Duration
		}
		res.Episodes = append(res.Episodes, ep)
	}

	if f.Image != nil {
		res.CoverImageURL = strings.TrimSpace(f.Image.URL)
	}
	if thumb, ok := extensionAttr(f.Extensions, "media", "thumbnail", "url"); ok && res.CoverImageURL == "" {
		res.CoverImageURL = thumb
	}
	if author, ok := extensionText(f.Extensions, "googleplay", "author"); ok {
		res.Author = n.cleanText(author)
	}

	if itunes {
		res.FeedType = domain.FeedTypeITunes
	}
	if f.ITunesExt != nil {
		n.applyITunes(res, f.ITunesExt)
	}
	return res
}

// applyITunes fills metadata from the channel-level itunes namespace, itunes values win over plain RSS
func (n *Normalizer) applyITunes(res *domain.NormalizedFeed, it *ext.ITunesFeedExtension) {
	if img := strings.TrimSpace(it.Image); img != "" {
		res.CoverImageURL = img
	}
	if it.Author != "" {
		res.Author = n.cleanText(it.Author)
	}
	if res.Description == "" {
		res.Description = n.cleanText(it.Summary)
	}
	res.Explicit = parseExplicit(it.Explicit)
	for _, c := range it.Categories {
		res.Categories = appendCategory(res.Categories, c)
	}
}

func (n *Normalizer) fromAtom(f *atom.Feed) *domain.NormalizedFeed {
	res := &domain.NormalizedFeed{
		Title:       n.cleanText(f.Title),
		Description: n.cleanText(f.Subtitle),
		ItemCount:   len(f.Entries),
		FeedType:    domain.FeedTypeAtom,
		Episodes:    []domain.Episode{},
	}
	if len(f.Authors) > 0 && f.Authors[0] != nil {
		res.Author = n.cleanText(f.Authors[0].Name)
	}
	res.CoverImageURL = strings.TrimSpace(f.Logo)
	if res.CoverImageURL == "" {
		res.CoverImageURL = strings.TrimSpace(f.Icon)
	}

	for i, entry := range f.Entries {
		link := enclosureLink(entry.Links)
		if link == nil {
			continue
		}
		res.EpisodeCount++
		published := atomEntryDate(entry)
		res.LatestEpisodeDate = laterOf(res.LatestEpisodeDate, published)
		if i >= n.maxEntries {
			continue
		}

		ep := domain.Episode{
			GUID:      entry.ID,
			Title:     n.cleanText(entry.Title),
			AudioURL:  strings.TrimSpace(link.Href),
			AudioType: link.Type,
			Published: published,
		}
		ep.AudioLength, _ = strconv.ParseInt(strings.TrimSpace(link.Length), 10, 64)
		if ep.GUID == "" {
			ep.GUID = ep.AudioURL
		}
		res.Episodes = append(res.Episodes, ep)
	}
	return res
}

// checkXML walks the whole document laxly (html entities, declared charsets) and reports
// the first syntax error. the feed parser itself silently repairs truncated documents.
func checkXML(raw []byte) error {
	dec := newLaxDecoder(raw)
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return domain.NewFeedError(domain.ErrParse, err)
		}
	}
}

// unknownFormat reports the root element of a well-formed document gofeed didn't recognize
func (n *Normalizer) unknownFormat(raw []byte) error {
	dec := newLaxDecoder(raw)
	for {
		tok, err := dec.Token()
		if err != nil {
			return domain.NewFeedError(domain.ErrUnknownFeedFormat, errors.New("no root element"))
		}
		if se, ok := tok.(xml.StartElement); ok {
			return domain.NewFeedError(domain.ErrUnknownFeedFormat, fmt.Errorf("unsupported root element <%s>", se.Name.Local))
		}
	}
}

func newLaxDecoder(raw []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// cleanText strips markup, unescapes entities, collapses whitespace and caps the length
func (n *Normalizer) cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(n.policy.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > n.maxTextSize {
		s = string(runes[:n.maxTextSize])
	}
	return s
}

func rssItemDate(item *rss.Item) *time.Time {
	if item.PubDateParsed != nil {
		t := item.PubDateParsed.UTC()
		return &t
	}
	if t := parseDate(item.PubDate); t != nil {
		return t
	}
	if item.DublinCoreExt != nil {
		for _, d := range item.DublinCoreExt.Date {
			if t := parseDate(d); t != nil {
				return t
			}
		}
	}
	return nil
}

func atomEntryDate(entry *atom.Entry) *time.Time {
	candidates := []struct {
		parsed *time.Time
		raw    string
	}{
		{entry.PublishedParsed, entry.Published},
		{entry.UpdatedParsed, entry.Updated},
	}
	for _, c := range candidates {
		if c.parsed != nil {
			t := c.parsed.UTC()
			return &t
		}
		if t := parseDate(c.raw); t != nil {
			return t
		}
	}
	return nil
}

func enclosureLink(links []*atom.Link) *atom.Link {
	for _, l := range links {
		if l != nil && strings.EqualFold(l.Rel, "enclosure") && strings.TrimSpace(l.Href) != "" {
			return l
		}
	}
	return nil
}

// extensionText looks up the text of the first prefix:name element of a namespace extension
func extensionText(exts ext.Extensions, prefix, name string) (string, bool) {
	e, ok := firstExtension(exts, prefix, name)
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(e.Value)
	return v, v != ""
}

// extensionAttr looks up an attribute of the first prefix:name element of a namespace extension
func extensionAttr(exts ext.Extensions, prefix, name, attr string) (string, bool) {
	e, ok := firstExtension(exts, prefix, name)
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(e.Attrs[attr])
	return v, v != ""
}

func firstExtension(exts ext.Extensions, prefix, name string) (ext.Extension, bool) {
	if exts == nil {
		return ext.Extension{}, false
	}
	byName, ok := exts[prefix]
	if !ok {
		return ext.Extension{}, false
	}
	list := byName[name]
	if len(list) == 0 {
		return ext.Extension{}, false
	}
	return list[0], true
}

func appendCategory(dst []string, c *ext.ITunesCategory) []string {
	for ; c != nil; c = c.Subcategory {
		if text := strings.TrimSpace(c.Text); text != "" {
			dst = append(dst, text)
		}
	}
	return dst
}

func parseExplicit(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "explicit":
		return true
	default:
		return false
	}
}
