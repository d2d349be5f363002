package rag

import "strings"

// coreTerms are searched on every request, even when the prompt is empty.
// They anchor the retrieved context in general UX fundamentals.
var coreTerms = []string{
	"visual hierarchy",
	"accessibility",
	"usability",
	"conversion optimization",
	"user experience",
}

// expansionRule adds topic terms when its trigger appears in the prompt.
type expansionRule struct {
	Trigger string
	Terms   []string
}

// expansionRules broaden the search when the prompt mentions a known topic.
// Evaluated in order so extraction output is deterministic.
var expansionRules = []expansionRule{
	{"button", []string{"button design", "interactive elements"}},
	{"cta", []string{"call to action", "button design"}},
	{"checkout", []string{"checkout flow", "cart abandonment"}},
	{"cart", []string{"cart abandonment", "checkout flow"}},
	{"form", []string{"form design", "input validation"}},
	{"mobile", []string{"mobile usability", "touch targets"}},
	{"color", []string{"color contrast", "accessibility"}},
	{"contrast", []string{"color contrast", "accessibility"}},
	{"navigation", []string{"navigation design", "information architecture"}},
	{"menu", []string{"navigation design", "information architecture"}},
	{"font", []string{"typography", "readability"}},
	{"text", []string{"typography", "readability"}},
	{"onboarding", []string{"onboarding flow", "user activation"}},
	{"pricing", []string{"pricing page", "conversion optimization"}},
	{"competitor", []string{"competitor analysis", "industry benchmarks"}},
	{"landing", []string{"landing page", "conversion optimization"}},
}

// stopwords excluded from phrase extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "are": true, "was": true, "you": true, "your": true,
	"our": true, "can": true, "how": true, "what": true, "why": true,
	"please": true, "about": true, "from": true, "into": true, "does": true,
	"should": true, "would": true, "could": true, "have": true, "has": true,
	"its": true, "their": true, "them": true, "they": true, "when": true,
	"where": true, "will": true, "make": true, "more": true, "some": true,
}

// maxPhrases caps the number of n-gram phrases extracted from the prompt.
const maxPhrases = 4

// ExtractTerms derives the ordered search-term list for a request.
//
// Order matters for retrieval (terms are processed sequentially): core UX
// terms first, then keyword-triggered expansions, then annotation-derived
// context terms, then the trimmed raw prompt, then extracted 2-3 word
// phrases. The result is lowercase-normalized and deduplicated while
// preserving first-occurrence order. An empty prompt still yields the core
// terms.
func ExtractTerms(prompt string, annotations []Annotation) []string {
	var terms []string
	terms = append(terms, coreTerms...)

	lowered := strings.ToLower(strings.TrimSpace(prompt))

	for _, rule := range expansionRules {
		if strings.Contains(lowered, rule.Trigger) {
			terms = append(terms, rule.Terms...)
		}
	}

	terms = append(terms, annotationTerms(annotations)...)

	if lowered != "" {
		terms = append(terms, lowered)
	}

	terms = append(terms, extractPhrases(lowered)...)

	return dedupeStrings(terms)
}

// annotationTerms derives context terms from image annotations by running
// the annotation text through the same expansion rules as the prompt.
func annotationTerms(annotations []Annotation) []string {
	var terms []string
	for _, a := range annotations {
		text := strings.ToLower(strings.TrimSpace(a.Label + " " + a.Comment))
		if text == "" {
			continue
		}
		for _, rule := range expansionRules {
			if strings.Contains(text, rule.Trigger) {
				terms = append(terms, rule.Terms...)
			}
		}
	}
	if len(annotations) > 0 {
		terms = append(terms, "design feedback")
	}
	return terms
}

// extractPhrases pulls adjacent 2-word and 3-word phrases from the prompt,
// skipping stopwords and short tokens, capped at maxPhrases.
func extractPhrases(lowered string) []string {
	words := splitWords(lowered)

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 3 || stopwords[w] {
			continue
		}
		filtered = append(filtered, w)
	}

	var phrases []string
	for i := 0; i+1 < len(filtered) && len(phrases) < maxPhrases; i++ {
		phrases = append(phrases, filtered[i]+" "+filtered[i+1])
	}
	for i := 0; i+2 < len(filtered) && len(phrases) < maxPhrases; i++ {
		phrases = append(phrases, filtered[i]+" "+filtered[i+1]+" "+filtered[i+2])
	}
	return phrases
}

// splitWords tokenizes on any non-alphanumeric rune.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLower && !isDigit
	})
}

// dedupeStrings removes duplicates while preserving first-occurrence order.
// Input is assumed lowercase except the core terms, which already are.
func dedupeStrings(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		normalized := strings.ToLower(strings.TrimSpace(term))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
