package classify

import (
	"reflect"
	"testing"

	"AperoScanner/internal/domain"
)

func TestClassifyPizzaAndBeer(t *testing.T) {
	t.Parallel()

	event := domain.RawEvent{"description_en": "Join us for pizza and beer"}
	result := Classify(event, DefaultRules)

	if !reflect.DeepEqual(result.Categories, []string{"food", "drinks"}) {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
	want := map[string][]string{"food": {"pizza"}, "drinks": {"beer"}}
	if !reflect.DeepEqual(result.Matches, want) {
		t.Fatalf("unexpected matches: %v", result.Matches)
	}
	if result.Summary != "Food (pizza) · Drinks (beer)" {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}
}

func TestClassifyPriorityOrderIgnoresTextOrder(t *testing.T) {
	t.Parallel()

	// Drinks keyword appears first in the text; food must still lead.
	event := domain.RawEvent{"title_en": "Beer night with pizza"}
	result := Classify(event, DefaultRules)

	if len(result.Categories) < 2 || result.Categories[0] != "food" || result.Categories[1] != "drinks" {
		t.Fatalf("unexpected category order: %v", result.Categories)
	}
}

func TestClassifyEmptyEvent(t *testing.T) {
	t.Parallel()

	for _, event := range []domain.RawEvent{
		{},
		{"title_en": "   "},
		{"description_de": "Vortrag ohne Verpflegung"},
	} {
		result := Classify(event, DefaultRules)
		if len(result.Categories) != 0 || len(result.Matches) != 0 || result.Summary != "" {
			t.Fatalf("expected empty result for %v, got %+v", event, result)
		}
		if !result.Empty() {
			t.Fatalf("Empty() should report true for %v", event)
		}
	}
}

func TestClassifyEmptyIffInvariant(t *testing.T) {
	t.Parallel()

	events := []domain.RawEvent{
		{"description_en": "pizza"},
		{"description_en": "nothing to eat here"},
		{"title_de": "Glühwein und Punsch"},
		{},
	}
	for _, event := range events {
		r := Classify(event, DefaultRules)
		catsEmpty := len(r.Categories) == 0
		matchesEmpty := len(r.Matches) == 0
		summaryEmpty := r.Summary == ""
		if catsEmpty != matchesEmpty || matchesEmpty != summaryEmpty {
			t.Fatalf("empty-iff invariant violated for %v: %+v", event, r)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	event := domain.RawEvent{
		"title_en":       "Summer BBQ",
		"description_en": "grill, beer, wine and cake for everyone",
		"catchphrase_de": "Glühwein & Kuchen",
	}

	first := Classify(event, DefaultRules)
	for i := 0; i < 5; i++ {
		if got := Classify(event, DefaultRules); !reflect.DeepEqual(got, first) {
			t.Fatalf("classification not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestClassifyMultiWordKeywordBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"There will be finger food at the stand", true},
		{"Fingerfood und Bowle", true},
		{"finger   food\tgalore", true},
		{"bring your finger and some food", false},
	}

	for _, tc := range cases {
		result := Classify(domain.RawEvent{"description_en": tc.text}, DefaultRules)
		matched := false
		for _, kw := range result.Matches["snacks"] {
			if kw == "finger food" {
				matched = true
			}
		}
		if matched != tc.want {
			t.Errorf("text %q: finger food matched=%v, want %v", tc.text, matched, tc.want)
		}
	}
}

func TestClassifyAccentInsensitive(t *testing.T) {
	t.Parallel()

	result := Classify(domain.RawEvent{"description_de": "Gluhwein und Getranke"}, DefaultRules)
	if len(result.Categories) != 1 || result.Categories[0] != "drinks" {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
	// "wein" hits as a substring of "gluhwein"; verbatim substring match is intended.
	want := []string{"getränke", "glühwein", "wein"}
	if !reflect.DeepEqual(result.Matches["drinks"], want) {
		t.Fatalf("unexpected drink matches: %v", result.Matches["drinks"])
	}
}

func TestClassifyAlternateRuleTable(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{ID: "cheese", Label: "Cheese", Keywords: []string{"raclette", "fondue"}},
		{ID: "broken", Label: "Broken", Keywords: []string{""}},
	}

	result := Classify(domain.RawEvent{"title_en": "Fondue evening"}, rules)
	if !reflect.DeepEqual(result.Categories, []string{"cheese"}) {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
	if result.Summary != "Cheese (fondue)" {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}
}

func TestClassifySummaryCapsKeywords(t *testing.T) {
	t.Parallel()

	event := domain.RawEvent{"description_en": "pizza, pasta, burger and raclette dinner"}
	result := Classify(event, DefaultRules)

	if result.Summary != "Food (burger, dinner, pasta)" {
		t.Fatalf("expected three keywords in summary, got %q", result.Summary)
	}
	if len(result.Matches["food"]) != 5 {
		t.Fatalf("expected all matches retained, got %v", result.Matches["food"])
	}
}
