package bot

import (
	"testing"
)

func TestShortHash(t *testing.T) {
	cases := []struct {
		hash string
		want string
	}{
		{"AbCdEfGhIjKlMnOpQrSt", "AbCdEfGhIj..."},
		{"exactly10c", "exactly10c"},
		{"short", "short"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := shortHash(tc.hash); got != tc.want {
			t.Errorf("shortHash(%q) = %q, want %q", tc.hash, got, tc.want)
		}
	}
}

func TestDepositAmount(t *testing.T) {
	if got := depositAmount(0); got.Sign() != 0 {
		t.Fatalf("depositAmount(0) = %v", got)
	}
	if got := depositAmount(2500000); got.String() != "2500000" {
		t.Fatalf("depositAmount(2500000) = %v", got)
	}
}
