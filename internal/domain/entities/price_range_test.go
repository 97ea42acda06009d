package entities

import (
	"testing"
)

func TestPriceBracket_ContainsBoundaries(t *testing.T) {
	cases := []struct {
		key    string
		amount float64
		want   bool
	}{
		{"0-10000", 0, true},
		{"0-10000", 10000, true},
		{"0-10000", 10000.01, false},
		{"10000-30000", 10000, true},
		{"10000-30000", 30000, true},
		{"10000-30000", 9999.99, false},
		{"30000-50000", 30000, true},
		{"30000-50000", 50000, true},
		{"50000-100000", 50000, true},
		{"50000-100000", 100000, true},
		{"50000-100000", 100001, false},
		{"100000+", 100000, true},
		{"100000+", 5000000, true},
		{"100000+", 99999, false},
	}

	for _, tc := range cases {
		b, err := ParsePriceBracket(tc.key)
		if err != nil {
			t.Fatalf("ParsePriceBracket(%q): %v", tc.key, err)
		}
		if got := b.Contains(tc.amount); got != tc.want {
			t.Errorf("%s.Contains(%v) = %v, want %v", tc.key, tc.amount, got, tc.want)
		}
	}
}

func TestParsePriceBracket_AdHocRanges(t *testing.T) {
	b, err := ParsePriceBracket("15000-25000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Min != 15000 || b.Max != 25000 || b.Open {
		t.Errorf("unexpected bracket %+v", b)
	}

	open, err := ParsePriceBracket("250000+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open.Open || open.Min != 250000 {
		t.Errorf("unexpected bracket %+v", open)
	}
}

func TestParsePriceBracket_Invalid(t *testing.T) {
	for _, key := range []string{"cheap", "5000", "30000-10000", "abc+", "-5"} {
		if _, err := ParsePriceBracket(key); err == nil {
			t.Errorf("expected error for %q", key)
		}
	}
}

func TestBracketFor_EdgeBelongsToLowerBracket(t *testing.T) {
	cases := map[float64]string{
		0:         "0-10000",
		10000:     "0-10000",
		10001:     "10000-30000",
		30000:     "10000-30000",
		50000:     "30000-50000",
		100000:    "50000-100000",
		100000.5:  "100000+",
		2_000_000: "100000+",
	}
	for amount, want := range cases {
		b, ok := BracketFor(amount)
		if !ok {
			t.Fatalf("BracketFor(%v) found nothing", amount)
		}
		if b.Key != want {
			t.Errorf("BracketFor(%v) = %s, want %s", amount, b.Key, want)
		}
	}

	if _, ok := BracketFor(-1); ok {
		t.Error("negative amount should not be classified")
	}
}
