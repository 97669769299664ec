package token

import (
	"strings"
	"testing"
)

func TestEstimator_Empty(t *testing.T) {
	if n := (Estimator{}).Count(""); n != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", n)
	}
}

func TestEstimator_NonEmptyIsAtLeastOne(t *testing.T) {
	if n := (Estimator{}).Count("x"); n < 1 {
		t.Errorf("expected at least 1 token, got %d", n)
	}
}

func TestEstimator_ScalesWithWords(t *testing.T) {
	short := (Estimator{}).Count(strings.Repeat("word ", 10))
	long := (Estimator{}).Count(strings.Repeat("word ", 100))
	if long <= short {
		t.Errorf("expected longer text to count more tokens: short=%d long=%d", short, long)
	}
	// ~1.33 tokens per word.
	if long < 100 || long > 200 {
		t.Errorf("expected roughly 133 tokens for 100 words, got %d", long)
	}
}

func TestEstimator_Deterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	a := (Estimator{}).Count(text)
	b := (Estimator{}).Count(text)
	if a != b {
		t.Errorf("expected identical counts, got %d and %d", a, b)
	}
}
