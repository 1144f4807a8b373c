package feed

import "net/http"

// feedAccept lists content types a podcast feed may be served with, most specific first
const feedAccept = "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5"

// addFeedHeaders sets the fixed identifying headers for feed fetching.
// the header set is deterministic so upstream logs can attribute our checks.
func addFeedHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", feedAccept)
	// always see the current document, feeds behind caching proxies can go stale
	req.Header.Set("Cache-Control", "no-cache")
}
