package listing

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// collectionMarkers are URL shapes that identify playlists and channels even
// when the first page happens to return a single row.
var collectionMarkers = []string{
	"/playlist",
	"/channel/",
	"/user/",
	"/c/",
	"/@",
}

// looksLikeCollection reports whether the URL's shape matches a collection
// pattern.
func looksLikeCollection(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Query().Get("list") != "" {
		return true
	}
	path := parsed.Path
	for _, marker := range collectionMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// fallbackTitle derives a display title from the URL path when the tool
// reports no usable playlist title.
func fallbackTitle(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	segment := ""
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			segment = segments[i]
			break
		}
	}
	if segment == "" {
		if list := parsed.Query().Get("list"); list != "" {
			return list
		}
		return parsed.Host
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return cases.Title(language.Und).String(segment)
}
