package textutil_test

import (
	"testing"

	"playbridge/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Road Trip":          "Road Trip",
		`a/b\c:d*e?f"g<h>i|`: "a_b_c_d_e_f_g_h_i_",
		"  ":                 "playlist",
		"..":                 "playlist",
		"Música 2024":        "Música 2024",
	}
	for in, want := range cases {
		if got := textutil.SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
