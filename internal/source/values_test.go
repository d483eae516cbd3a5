package source

import (
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		pct     bool
		wantErr bool
	}{
		{"1234", 1234, false, false},
		{"$1,234.50", 1234.5, false, false},
		{"€ 12 000", 12000, false, false},
		{"1.234,5", 1234.5, false, false},
		{"1.234.567", 1234567, false, false},
		{"12,5", 12.5, false, false},
		{"1,234,567", 1234567, false, false},
		{"(300)", -300, false, false},
		{"-42.5", -42.5, false, false},
		{"7%", 7, true, false},
		{"", 0, false, true},
		{"n/a", 0, false, true},
		{"abc", 0, false, true},
		{"100 EUR", 100, false, false},
		{"USD 1,200", 1200, false, false},
		{"1.5M", 1500000, false, false},
		{"2k", 2000, false, false},
		{"$3.2bn", 3200000000, false, false},
		{"0,125", 0.125, false, false},
		{"1234,567", 1234.567, false, false},
		{"12,345", 12345, false, false},
		{"1e3", 1000, false, false},
		{"2.5E-2", 0.025, false, false},
		{"1e20", 1e20, false, false},
		{"12 apples", 0, false, true},
		{"Q1 2024", 0, false, true},
		{"1e400", 0, false, true},
		{"5 K 3", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, pct, err := ParseNumber(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseNumber(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNumber(%q): %v", tt.in, err)
			}
			if got != tt.want || pct != tt.pct {
				t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, pct, tt.want, tt.pct)
			}
		})
	}
}

func TestNormalizeRate(t *testing.T) {
	if got := NormalizeRate(7, false); got != 0.07 {
		t.Errorf("NormalizeRate(7) = %v, want 0.07", got)
	}
	if got := NormalizeRate(0.5, true); got != 0.005 {
		t.Errorf("NormalizeRate(0.5%%) = %v, want 0.005", got)
	}
	if got := NormalizeRate(0.04, false); got != 0.04 {
		t.Errorf("NormalizeRate(0.04) = %v, want 0.04", got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "03/05/2024", "05.03.2024", "2024/03/05", "Mar 5, 2024"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}

	month, err := ParseDate("Mar 2024")
	if err != nil || !month.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate(Mar 2024) = %v, %v", month, err)
	}

	if _, err := ParseDate("yesterday"); err == nil {
		t.Error("expected error for free text")
	}
}
