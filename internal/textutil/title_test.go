package textutil

import "testing"

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"episode dotted", "/media/Kimi.no.Todoke.S01E05.1080p.mkv", "Kimi no Todoke - S01E05"},
		{"episode spaced", "/media/Aggretsuko - s02e10 - Title.mp4", "Aggretsuko - S02E10"},
		{"episode with group tag", "/media/[Group] Mushishi S01E03 [720p].mkv", "Mushishi - S01E03"},
		{"parenthetical year", "/media/Spirited Away (2001) [BluRay].mkv", "Spirited Away (2001)"},
		{"bracket block", "/media/Your Name [1080p].mp4", "Your Name"},
		{"dotted movie", "/media/Tokyo_Story.mkv", "Tokyo Story"},
		{"bare", "/media/clip.mp4", "clip"},
		{"only tags", "/media/[x].mkv", "[x]"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.path); got != tt.want {
				t.Fatalf("DeriveTitle(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeComposes(t *testing.T) {
	if got := Normalize(" Cafe\u0301 "); got != "Caf\u00e9" {
		t.Fatalf("expected NFC output, got %q", got)
	}
}
