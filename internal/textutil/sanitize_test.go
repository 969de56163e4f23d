package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"":                     "default",
		"  ":                   "default",
		"My Session":           "my_session",
		"/opt/hashcat.potfile": "opt_hashcat.potfile",
		"run-01_b":             "run-01_b",
		"___":                  "default",
	}
	for input, want := range cases {
		if got := SanitizeToken(input); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	hash := "5f4dcc3b5aa765d61d8327deb882cf99"
	if got := Truncate(hash, 0); got != hash {
		t.Fatalf("width 0 should not truncate, got %q", got)
	}
	if got := Truncate(hash, 64); got != hash {
		t.Fatalf("short input should be unchanged, got %q", got)
	}
	got := Truncate(hash, 11)
	if got != "5f4d...cf99" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate(hash, 2); got != "5f" {
		t.Fatalf("tiny width = %q", got)
	}
}
