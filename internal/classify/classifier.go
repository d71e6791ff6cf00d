// Package classify infers refreshment categories from an event's free-text
// fields using a keyword rule table.
package classify

import (
	"sort"
	"strings"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/textutil"
)

// corpusFields are concatenated in this order to form the match target.
var corpusFields = []string{
	"title_en", "title_de",
	"catchphrase_en", "catchphrase_de",
	"description_en", "description_de",
}

const maxSummaryKeywords = 3

// Classify tests every rule's keywords against the event's combined text and
// returns the matched categories in display-priority order, the keywords that
// fired per category, and a rendered summary. The zero RefreshmentResult is
// returned when nothing matches. Pure: repeated calls yield identical output.
func Classify(event domain.RawEvent, rules []Rule) domain.RefreshmentResult {
	corpus := buildCorpus(event)
	if corpus == "" {
		return domain.RefreshmentResult{}
	}

	matches := map[string][]string{}
	labels := map[string]string{}
	var discovered []string

	for _, rule := range rules {
		var hits []string
		for _, keyword := range rule.Keywords {
			if keywordMatches(corpus, keyword) {
				hits = append(hits, keyword)
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.Strings(hits)
		if _, seen := matches[rule.ID]; !seen {
			discovered = append(discovered, rule.ID)
		}
		matches[rule.ID] = append(matches[rule.ID], hits...)
		labels[rule.ID] = rule.Label
	}

	if len(matches) == 0 {
		return domain.RefreshmentResult{}
	}

	categories := orderCategories(discovered, matches)

	return domain.RefreshmentResult{
		Categories: categories,
		Matches:    matches,
		Summary:    buildSummary(categories, labels, matches),
	}
}

// buildCorpus joins the event's text fields with single spaces, skipping
// empties, then accent-strips, lower-cases, and collapses whitespace.
func buildCorpus(event domain.RawEvent) string {
	parts := make([]string, 0, len(corpusFields))
	for _, field := range corpusFields {
		if v := strings.TrimSpace(event.Text(field)); v != "" {
			parts = append(parts, v)
		}
	}
	joined := strings.Join(parts, " ")
	return textutil.CollapseWhitespace(textutil.Fold(textutil.Normalize(joined)))
}

// keywordMatches tests a verbatim substring match of the normalized keyword
// in the corpus. Multi-word keywords match as a contiguous phrase, either
// spaced ("finger food") or fully collapsed ("fingerfood"). An empty keyword
// never matches.
func keywordMatches(corpus, keyword string) bool {
	normalized := textutil.CollapseWhitespace(textutil.Fold(textutil.Normalize(keyword)))
	if normalized == "" {
		return false
	}
	if strings.Contains(corpus, normalized) {
		return true
	}
	if strings.ContainsRune(normalized, ' ') {
		return strings.Contains(corpus, strings.ReplaceAll(normalized, " ", ""))
	}
	return false
}

// orderCategories applies the fixed display priority; hit categories not in
// the priority list keep their discovery order at the end.
func orderCategories(discovered []string, matches map[string][]string) []string {
	ordered := make([]string, 0, len(matches))
	ranked := map[string]bool{}
	for _, id := range displayPriority {
		ranked[id] = true
		if _, ok := matches[id]; ok {
			ordered = append(ordered, id)
		}
	}
	for _, id := range discovered {
		if !ranked[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

func buildSummary(categories []string, labels map[string]string, matches map[string][]string) string {
	rendered := make([]string, 0, len(categories))
	for _, id := range categories {
		label := labels[id]
		keywords := matches[id]
		if len(keywords) == 0 {
			rendered = append(rendered, label)
			continue
		}
		if len(keywords) > maxSummaryKeywords {
			keywords = keywords[:maxSummaryKeywords]
		}
		rendered = append(rendered, label+" ("+strings.Join(keywords, ", ")+")")
	}
	return strings.Join(rendered, " · ")
}
