package textutil

import "testing"

func TestNormalizeStripsAccents(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"apéro":            "apero",
		"Apéritif":         "Aperitif",
		"Glühwein":         "Gluhwein",
		"Zürich":           "Zurich",
		"plain ascii":      "plain ascii",
		"":                 "",
		"crème brûlée été": "creme brulee ete",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"apéro", "Glühwein & Punsch", "Zürich—Genève", "ascii only", ""}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := CollapseWhitespace("  finger \t food \n now "); got != "finger food now" {
		t.Fatalf("unexpected collapse result: %q", got)
	}
	if got := CollapseWhitespace(""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	if got := Fold("APÉRO Riche"); got != "apéro riche" {
		t.Fatalf("unexpected fold result: %q", got)
	}
}
