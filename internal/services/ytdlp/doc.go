// Package ytdlp wraps the external yt-dlp CLI behind typed listing, probe,
// and download operations.
//
// The tool is treated as a black box with a text-based stdout contract:
// listing pages print tab-delimited rows through a fixed --print template,
// and downloads are scanned line-by-line for progress percentages and the
// "Destination:" filename. Parsing is isolated in parse.go with tests driven
// by captured literal tool output, so format drift stays contained.
//
// Concurrency admission is the caller's responsibility; the client assumes a
// semaphore slot has already been granted before any method is invoked.
package ytdlp
