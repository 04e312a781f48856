package textutil_test

import (
	"math"
	"testing"

	"marquee/internal/textutil"
)

func TestDiceSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"accent folding", "Pokémon", "Pokemon", 1},
		{"punctuation ignored", "Cowboy Bebop", "cowboy-bebop!", 1},
		{"short input", "a", "ab", 0},
		{"empty", "", "", 0},
		{"punctuation only", "!!", "??", 0},
		{"partial overlap", "night", "nacht", 1.0 / 3.0},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textutil.DiceSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("DiceSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDiceSimilarityIsSymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"Shingeki no Kyojin", "Attack on Titan"},
		{"The Shawshank Redemption", "Shawshank"},
		{"Fullmetal Alchemist: Brotherhood", "Fullmetal Alchemist"},
	}
	for _, pair := range pairs {
		ab := textutil.DiceSimilarity(pair[0], pair[1])
		ba := textutil.DiceSimilarity(pair[1], pair[0])
		if ab != ba {
			t.Fatalf("expected symmetric score for %q, got %v and %v", pair, ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("score out of range for %q: %v", pair, ab)
		}
	}
}

func TestRomanizationVariants(t *testing.T) {
	got := textutil.RomanizationVariants("Kyōjin")
	want := []string{"Kyōjin", "Kyoojin", "Kyoujin"}
	if len(got) != len(want) {
		t.Fatalf("RomanizationVariants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RomanizationVariants = %v, want %v", got, want)
		}
	}

	if plain := textutil.RomanizationVariants("Bebop"); len(plain) != 1 || plain[0] != "Bebop" {
		t.Fatalf("expected single variant for unmarked title, got %v", plain)
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		title string
		year  int
		want  string
	}{
		{"  Pokémon: The Movie!! ", 1998, "pokemon the movie_1998"},
		{"Cowboy   Bebop", 0, "cowboy bebop"},
		{"Léon", -1, "leon"},
	}
	for _, tt := range tests {
		if got := textutil.CacheKey(tt.title, tt.year); got != tt.want {
			t.Fatalf("CacheKey(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
		}
	}
}

func TestSimilarityKeyKeepsNonLatinLetters(t *testing.T) {
	if got := textutil.SimilarityKey("進撃の巨人 (2013)"); got != "進撃の巨人2013" {
		t.Fatalf("SimilarityKey = %q", got)
	}
}
