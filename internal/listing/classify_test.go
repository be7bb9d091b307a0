package listing

import "testing"

func TestLooksLikeCollection(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://video.example/playlist?list=PL123", true},
		{"https://video.example/watch?v=abc&list=PL123", true},
		{"https://video.example/channel/UC123", true},
		{"https://video.example/user/somebody", true},
		{"https://video.example/c/nature-films", true},
		{"https://video.example/@creator", true},
		{"https://video.example/watch?v=abc", false},
		{"https://video.example/shorts/abc", false},
	}
	for _, tc := range cases {
		if got := looksLikeCollection(tc.url); got != tc.want {
			t.Errorf("looksLikeCollection(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestFallbackTitle(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://video.example/c/nature-films", "Nature Films"},
		{"https://video.example/user/field_recordings", "Field Recordings"},
		{"https://video.example/playlist?list=PL123", "Playlist"},
		{"https://video.example/?list=PL999", "PL999"},
		{"https://video.example", "video.example"},
	}
	for _, tc := range cases {
		if got := fallbackTitle(tc.url); got != tc.want {
			t.Errorf("fallbackTitle(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
