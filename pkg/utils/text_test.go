package utils

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Paylocity Holding   Corp. ", "Paylocity Holding Corp."},
		{"ﬁnancial\tnews\n", "financial news"},
		{"Ｆｉｓｅｒｖ", "Fiserv"},
		{"a\u0007b", "ab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
