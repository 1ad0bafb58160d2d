package models

import (
	"testing"
)

func TestReport_InsertionOrder(t *testing.T) {
	r := NewReport()
	r.Set("first", Verdict{Actual: "a", Rating: RatingTrue})
	r.Set("second", Verdict{Actual: "b", Rating: RatingFalse})
	r.Set("third", Verdict{Actual: "c", Rating: RatingNotYet})

	claims := r.Claims()
	want := []string{"first", "second", "third"}
	for i, claim := range want {
		if claims[i] != claim {
			t.Errorf("Position %d: expected %q, got %q", i, claim, claims[i])
		}
	}
}

func TestReport_DuplicateCollapsesLastWriteWins(t *testing.T) {
	r := NewReport()
	r.Set("claim", Verdict{Actual: "first", Rating: RatingTrue})
	r.Set("other", Verdict{Actual: "x", Rating: RatingUnclear})
	r.Set("claim", Verdict{Actual: "second", Rating: RatingFalse})

	if r.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", r.Len())
	}

	claims := r.Claims()
	if claims[0] != "claim" {
		t.Errorf("Repeated claim must keep its original position, got %v", claims)
	}

	v, _ := r.Get("claim")
	if v.Actual != "second" || v.Rating != RatingFalse {
		t.Errorf("Expected verdict from last write, got %+v", v)
	}
}

func TestReport_Counts(t *testing.T) {
	r := NewReport()
	r.Set("a", Verdict{Rating: RatingTrue})
	r.Set("b", Verdict{Rating: RatingTrue})
	r.Set("c", Verdict{Rating: RatingFalse})
	r.Set("d", Verdict{Rating: RatingNotYet})
	r.Set("e", Verdict{Rating: RatingUnclear})

	trueN, falseN, notYet, unclear := r.Counts()
	if trueN != 2 || falseN != 1 || notYet != 1 || unclear != 1 {
		t.Errorf("Unexpected counts: %d/%d/%d/%d", trueN, falseN, notYet, unclear)
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		raw     string
		want    Rating
		clamped bool
	}{
		{"TRUE", RatingTrue, false},
		{"FALSE", RatingFalse, false},
		{"NOT YET", RatingNotYet, false},
		{"UNCLEAR", RatingUnclear, false},
		{"PROBABLY", RatingUnclear, true},
		{"", RatingUnclear, true},
		{"TRUE-ISH", RatingUnclear, true},
	}

	for _, tt := range tests {
		got, raw := NormalizeRating(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizeRating(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if tt.clamped && raw != tt.raw {
			t.Errorf("NormalizeRating(%q) should retain raw text, got %q", tt.raw, raw)
		}
		if !tt.clamped && raw != "" {
			t.Errorf("NormalizeRating(%q) should not report clamping, got %q", tt.raw, raw)
		}
	}
}
