package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/umputun/podpulse/pkg/domain"
)

// OPMLGenerator exports tracked feeds as an OPML subscription list
type OPMLGenerator struct {
	title string
	now   func() time.Time
}

// OPMLEntry is a single feed subscription read from an OPML document
type OPMLEntry struct {
	Title   string
	FeedURL string
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr,omitempty"`
	Type     string        `xml:"type,attr,omitempty"`
	XMLURL   string        `xml:"xmlUrl,attr,omitempty"`
	Health   string        `xml:"health,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline"`
}

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    struct {
		Title       string `xml:"title"`
		DateCreated string `xml:"dateCreated,omitempty"`
	} `xml:"head"`
	Body struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

// NewOPMLGenerator creates a new OPML generator
func NewOPMLGenerator(title string) *OPMLGenerator {
	if title == "" {
		title = "podpulse feeds"
	}
	return &OPMLGenerator{title: title, now: time.Now}
}

// Generate renders feeds as OPML 2.0, auto-disabled feeds included with their health attribute
func (g *OPMLGenerator) Generate(feeds []domain.FeedRecord) (string, error) {
	doc := opmlDoc{Version: "2.0"}
	doc.Head.Title = g.title
	doc.Head.DateCreated = g.now().UTC().Format(time.RFC1123Z)

	doc.Body.Outlines = make([]opmlOutline, 0, len(feeds))
	for _, f := range feeds {
		text := f.Title
		if text == "" {
			text = f.FeedURL
		}
		doc.Body.Outlines = append(doc.Body.Outlines, opmlOutline{
			Text:   text,
			Title:  f.Title,
			Type:   "rss",
			XMLURL: f.FeedURL,
			Health: string(f.Health.Status),
		})
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}
	return xml.Header + string(output), nil
}

// ParseOPML reads feed subscriptions from an OPML document, nested outline groups are flattened
func ParseOPML(r io.Reader) ([]OPMLEntry, error) {
	var doc opmlDoc
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OPML: %w", err)
	}

	res := []OPMLEntry{}
	var walk func(outlines []opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, o := range outlines {
			if u := strings.TrimSpace(o.XMLURL); u != "" {
				title := o.Title
				if title == "" {
					title = o.Text
				}
				res = append(res, OPMLEntry{Title: strings.TrimSpace(title), FeedURL: u})
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)
	return res, nil
}
