package search

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("Card_Transactions", "Daily card transactions, by merchant (v2) - to be used in BI")
	want := []string{"card", "transactions", "daily", "merchant", "used"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractKeywords = %v, want %v", got, want)
	}
}

func TestExtractKeywords_Cap(t *testing.T) {
	got := extractKeywords("alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima", "")
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[9] != "juliet" {
		t.Errorf("last keyword = %q, want juliet", got[9])
	}
}

func TestExtractKeywords_Unicode(t *testing.T) {
	got := extractKeywords("Apólices de Seguro", "")
	want := []string{"apólices", "seguro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractKeywords = %v, want %v", got, want)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Cards & Payments": "cards-payments",
		"  insurance ":     "insurance",
		"Consórcio":        "consórcio",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
