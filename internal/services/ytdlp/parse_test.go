package ytdlp

import "testing"

func TestParseListingLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ListingRow
		ok   bool
	}{
		{
			name: "full row",
			line: "Go Concurrency Patterns\tdQw4w9WgXcQ\thttps://www.youtube.com/watch?v=dQw4w9WgXcQ\t104857600",
			want: ListingRow{Title: "Go Concurrency Patterns", ExternalID: "dQw4w9WgXcQ", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ApproxSize: 104857600},
			ok:   true,
		},
		{
			name: "missing size",
			line: "Some Talk\tabc123\thttps://www.youtube.com/watch?v=abc123\tNA",
			want: ListingRow{Title: "Some Talk", ExternalID: "abc123", URL: "https://www.youtube.com/watch?v=abc123"},
			ok:   true,
		},
		{
			name: "placeholder title",
			line: "[Private video]\txyz789\thttps://www.youtube.com/watch?v=xyz789\tNA",
			want: ListingRow{Title: "[Private video]", ExternalID: "xyz789", URL: "https://www.youtube.com/watch?v=xyz789"},
			ok:   true,
		},
		{
			name: "float size",
			line: "Clip\tid1\thttps://example.com/watch?v=id1\t1234.56",
			want: ListingRow{Title: "Clip", ExternalID: "id1", URL: "https://example.com/watch?v=id1", ApproxSize: 1234},
			ok:   true,
		},
		{name: "trailing empty line", line: "", ok: false},
		{name: "too few fields", line: "Title\tid\turl", ok: false},
		{name: "interleaved tool chatter", line: "[youtube:tab] Downloading page 1", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseListingLine(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("row = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		line string
		want float64
		ok   bool
	}{
		{"[download]  23.4% of 120.50MiB at 2.35MiB/s ETA 00:41", 23.4, true},
		{"[download] 100% of 120.50MiB in 00:51", 100, true},
		{"[download]   0.1% of ~1.20GiB at Unknown speed", 0.1, true},
		{"[ffmpeg] Merging formats", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		got, ok := parsePercent(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parsePercent(%q) = %v,%v want %v,%v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDestination(t *testing.T) {
	line := "[download] Destination: /save/My Video.mp4"
	destination, ok := parseDestination(line)
	if !ok {
		t.Fatalf("destination not recognized in %q", line)
	}
	if destination != "/save/My Video.mp4" {
		t.Fatalf("destination = %q", destination)
	}
	if got := filenameFromDestination(destination); got != "My Video" {
		t.Fatalf("filename = %q, want %q", got, "My Video")
	}

	if _, ok := parseDestination("[download] Resuming download"); ok {
		t.Fatal("unrelated line should not match")
	}
}

func TestIsUnavailableTitle(t *testing.T) {
	for _, title := range []string{"[Deleted video]", "[Private video]", "[Unavailable video]"} {
		if !IsUnavailableTitle(title) {
			t.Fatalf("%q should classify as unavailable", title)
		}
	}
	for _, title := range []string{"NA", "My Video", "[Live]"} {
		if IsUnavailableTitle(title) {
			t.Fatalf("%q should not classify as unavailable", title)
		}
	}
}
