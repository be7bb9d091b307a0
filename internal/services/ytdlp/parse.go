package ytdlp

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// listingTemplate is the fixed --print format for playlist enumeration.
const listingTemplate = "%(title)s\t%(id)s\t%(webpage_url)s\t%(filesize_approx)s"

// titleTemplate is the --print format for the title-only probe.
const titleTemplate = "%(playlist_title)s"

// NoValue is the literal yt-dlp prints for fields it cannot resolve.
const NoValue = "NA"

// unavailableTitles are the placeholder strings the tool substitutes for
// removed, private, or otherwise inaccessible content.
var unavailableTitles = map[string]struct{}{
	"[Deleted video]":     {},
	"[Private video]":     {},
	"[Unavailable video]": {},
}

// IsUnavailableTitle reports whether title signals inaccessible content.
func IsUnavailableTitle(title string) bool {
	_, ok := unavailableTitles[title]
	return ok
}

// ListingRow is one parsed line of flat-playlist output.
type ListingRow struct {
	Title      string
	ExternalID string
	URL        string
	ApproxSize int64
}

// parseListingLine splits one tab-delimited listing line. Lines that do not
// match the four-field shape are parse anomalies: the caller skips them and
// keeps processing the rest of the page.
func parseListingLine(line string) (ListingRow, bool) {
	if strings.TrimSpace(line) == "" {
		return ListingRow{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return ListingRow{}, false
	}
	row := ListingRow{
		Title:      fields[0],
		ExternalID: fields[1],
		URL:        strings.TrimSpace(fields[2]),
	}
	if row.URL == "" {
		return ListingRow{}, false
	}
	if size := strings.TrimSpace(fields[3]); size != "" && size != NoValue {
		if parsed, err := strconv.ParseFloat(size, 64); err == nil {
			row.ApproxSize = int64(parsed)
		}
	}
	return row, true
}

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// parsePercent extracts a progress percentage from a download output line.
func parsePercent(line string) (float64, bool) {
	match := percentPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}

var destinationPattern = regexp.MustCompile(`Destination:\s+(.+)$`)

// parseDestination extracts the on-disk path from a "Destination:" line.
func parseDestination(line string) (string, bool) {
	match := destinationPattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// filenameFromDestination reduces a destination path to the bare title:
// the save-path prefix and the extension are stripped.
func filenameFromDestination(destination string) string {
	base := filepath.Base(destination)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
