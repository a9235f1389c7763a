package dedupe

import (
	"math"
	"testing"
)

func TestSimilarityKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "classic transposition pair",
			a:    "martha",
			b:    "marhta",
			want: 0.9611,
		},
		{
			name: "different lengths",
			a:    "dwayne",
			b:    "duane",
			want: 0.8400,
		},
		{
			name: "transposed adjacent characters",
			a:    "apple pie",
			b:    "appel pie",
			want: 0.9741,
		},
		{
			name: "doubled character",
			a:    "apple pie",
			b:    "applle pie",
			want: 0.9800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("Similarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityBoundaries(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical strings", "hello world", "hello world", 1.0},
		{"both empty", "", "", 1.0},
		{"empty vs non-empty", "", "abc", 0.0},
		{"non-empty vs empty", "abc", "", 0.0},
		{"no common characters", "abc", "xyz", 0.0},
		{"single identical character", "a", "a", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Similarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"martha", "marhta"},
		{"dwayne", "duane"},
		{"apple pie", "applle pie"},
		{"", "abc"},
		{"123 high street", "123 hihg street"},
	}

	for _, pair := range pairs {
		ab := Similarity(pair[0], pair[1])
		ba := Similarity(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %.6f but reversed = %.6f", pair[0], pair[1], ab, ba)
		}
	}
}

func TestSimilarityRange(t *testing.T) {
	// Every score must land in [0, 1]
	samples := []string{"", "a", "ab", "abc", "banana", "apple pie", "zzzzzz", "a b c d e"}

	for _, a := range samples {
		for _, b := range samples {
			got := Similarity(a, b)
			if got < 0.0 || got > 1.0 {
				t.Errorf("Similarity(%q, %q) = %.4f outside [0, 1]", a, b, got)
			}
		}
	}
}

func BenchmarkSimilarity(b *testing.B) {
	s1 := "42 high street petersfield hampshire"
	s2 := "42 hihg street petresfield hampshire"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Similarity(s1, s2)
	}
}
