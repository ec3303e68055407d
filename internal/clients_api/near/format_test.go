package near

import (
	"math/big"
	"strings"
	"testing"
)

func TestFormatNEAR(t *testing.T) {
	cases := []struct {
		yocto string
		want  string
	}{
		{"0", "0.0000 NEAR"},
		{"1000000000000000000000000", "1.0000 NEAR"},
		{"1500000000000000000000000", "1.5000 NEAR"},
		{"2500000000000000000000000", "2.5000 NEAR"},
		{"500000000000000000000000", "0.5000 NEAR"},
	}
	for _, tc := range cases {
		v, ok := new(big.Int).SetString(tc.yocto, 10)
		if !ok {
			t.Fatalf("bad literal %s", tc.yocto)
		}
		if got := FormatNEAR(v); got != tc.want {
			t.Errorf("FormatNEAR(%s) = %q, want %q", tc.yocto, got, tc.want)
		}
	}
}

func TestFormatNEARNil(t *testing.T) {
	if got := FormatNEAR(nil); got != "Unknown" {
		t.Fatalf("FormatNEAR(nil) = %q", got)
	}
}

func TestFormatBlockTimestamp(t *testing.T) {
	// 2023-11-14T22:13:20Z in nanoseconds.
	got := FormatBlockTimestamp("1700000000000000000")
	if got == "Invalid Timestamp" || !strings.Contains(got, "20") {
		t.Fatalf("FormatBlockTimestamp = %q", got)
	}
}

func TestFormatBlockTimestampInvalid(t *testing.T) {
	for _, ns := range []string{"", "abc", "-5", "12.7"} {
		if got := FormatBlockTimestamp(ns); got != "Invalid Timestamp" {
			t.Errorf("FormatBlockTimestamp(%q) = %q", ns, got)
		}
	}
}

func TestNowTimestamp(t *testing.T) {
	if NowTimestamp() == "" {
		t.Fatal("NowTimestamp returned empty string")
	}
}
