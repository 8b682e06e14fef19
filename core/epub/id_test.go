package epub

import "testing"

// TestSanitizeID verifies the identifier allow-list.
func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "chapter_1.xhtml", "chapter_1.xhtml"},
		{"directory separator", "images/cover.png", "images_cover.png"},
		{"backslash", `images\cover.png`, "images_cover.png"},
		{"spaces and punctuation", "a b(c)!.css", "a_b_c__.css"},
		{"latin letters", "café-ñ", "café-ñ"},
		{"middle dot", "a·b", "a·b"},
		{"multiplication sign is excluded", "2×3", "2_3"},
		{"division sign is excluded", "6÷3", "6_3"},
		{"cjk", "章节.xhtml", "章节.xhtml"},
		{"supplementary plane", "𝔘.xhtml", "𝔘.xhtml"},
		{"empty", "", ""},
		{"invalid utf8", "a\xffb", "a_b"},
		{"colon", "urn:x", "urn_x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSanitizeIDIsStable verifies the same input always yields the same id
// and that an id is a fixed point.
func TestSanitizeIDIsStable(t *testing.T) {
	inputs := []string{"OEBPS/Text/ch 1.xhtml", "ünïcødé/ß.png", "..//x", "\x00\x01"}
	for _, in := range inputs {
		first := SanitizeID(in)
		if second := SanitizeID(in); first != second {
			t.Errorf("SanitizeID(%q) not deterministic: %q vs %q", in, first, second)
		}
		if again := SanitizeID(first); again != first {
			t.Errorf("SanitizeID(%q) = %q, not a fixed point", first, again)
		}
	}
}

func TestSanitizeIDCollisions(t *testing.T) {
	if SanitizeID("a/b") != SanitizeID("a b") {
		t.Error("distinct paths mapping to the same id are expected to collide")
	}
}
