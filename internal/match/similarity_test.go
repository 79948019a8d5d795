package match

import (
	"math"
	"testing"
)

func TestQuickRatio(t *testing.T) {
	almostEqual := func(a, b float64) bool {
		return math.Abs(a-b) < 1e-9
	}

	t.Run("Identical Strings", func(t *testing.T) {
		if r := QuickRatio("Daft Punk", "Daft Punk"); r != 1.0 {
			t.Errorf("expected 1.0, got %v", r)
		}
	})

	t.Run("Case Insensitive", func(t *testing.T) {
		if r := QuickRatio("DAFT PUNK", "daft punk"); r != 1.0 {
			t.Errorf("expected 1.0 for case-only difference, got %v", r)
		}
	})

	t.Run("Both Empty", func(t *testing.T) {
		if r := QuickRatio("", ""); r != 1.0 {
			t.Errorf("expected 1.0 for two empty strings, got %v", r)
		}
	})

	t.Run("One Empty", func(t *testing.T) {
		if r := QuickRatio("abc", ""); r != 0.0 {
			t.Errorf("expected 0.0 against empty string, got %v", r)
		}
		if r := QuickRatio("", "abc"); r != 0.0 {
			t.Errorf("expected 0.0 against empty string, got %v", r)
		}
	})

	t.Run("No Common Characters", func(t *testing.T) {
		if r := QuickRatio("abc", "xyz"); r != 0.0 {
			t.Errorf("expected 0.0 for disjoint strings, got %v", r)
		}
	})

	t.Run("Partial Overlap", func(t *testing.T) {
		// common multiset {b, c, d}: 2*3/(4+4) = 0.75
		if r := QuickRatio("abcd", "bcde"); !almostEqual(r, 0.75) {
			t.Errorf("expected 0.75, got %v", r)
		}
	})

	t.Run("Repeated Characters Counted As Multiset", func(t *testing.T) {
		// "aab" vs "abb": common {a, b}: 2*2/(3+3)
		if r := QuickRatio("aab", "abb"); !almostEqual(r, 4.0/6.0) {
			t.Errorf("expected %v, got %v", 4.0/6.0, r)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"Get Lucky", "Get Lucky (feat. Pharrell Williams)"},
			{"abcd", "bcde"},
			{"Random Access Memories", "Discovery"},
		}
		for _, p := range pairs {
			if a, b := QuickRatio(p[0], p[1]), QuickRatio(p[1], p[0]); !almostEqual(a, b) {
				t.Errorf("QuickRatio(%q, %q)=%v differs from reversed %v", p[0], p[1], a, b)
			}
		}
	})

	t.Run("Range", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "b"},
			{"Daft Punk", "Daft Punk!"},
			{"One More Time", "One More Time - Radio Edit"},
			{"", "x"},
		}
		for _, p := range pairs {
			r := QuickRatio(p[0], p[1])
			if r < 0.0 || r > 1.0 {
				t.Errorf("QuickRatio(%q, %q)=%v out of [0, 1]", p[0], p[1], r)
			}
		}
	})

	t.Run("Near Miss Below Threshold", func(t *testing.T) {
		// "abcde" vs "abcdf": 2*4/10 = 0.8
		if r := QuickRatio("abcde", "abcdf"); !almostEqual(r, 0.8) {
			t.Errorf("expected 0.8, got %v", r)
		}
	})

	t.Run("Unicode Runes", func(t *testing.T) {
		if r := QuickRatio("Björk", "björk"); r != 1.0 {
			t.Errorf("expected 1.0 for case-folded unicode, got %v", r)
		}
	})
}
