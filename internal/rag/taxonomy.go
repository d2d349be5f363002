package rag

import "strings"

// categoryRule maps a trigger keyword to a knowledge category.
// Rules are evaluated in order; the first keyword contained in the term wins.
type categoryRule struct {
	Keyword  string
	Category string
}

// industryRule maps trigger keywords to an inferred industry label.
// Rules are evaluated in order; the first rule with any keyword contained in
// the prompt wins.
type industryRule struct {
	Industry string
	Keywords []string
}

// Taxonomy holds the static keyword→category and keyword→industry tables.
// Built once at startup and immutable afterwards, so the mappings are
// independently testable and swappable without touching retrieval logic.
type Taxonomy struct {
	categories []categoryRule
	industries []industryRule
}

// DefaultTaxonomy returns the built-in UX taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		categories: []categoryRule{
			{"button", "interactive-elements"},
			{"cta", "interactive-elements"},
			{"click", "interactive-elements"},
			{"form", "forms"},
			{"input", "forms"},
			{"field", "forms"},
			{"validation", "forms"},
			{"contrast", "accessibility"},
			{"accessib", "accessibility"},
			{"wcag", "accessibility"},
			{"aria", "accessibility"},
			{"screen reader", "accessibility"},
			{"keyboard", "accessibility"},
			{"checkout", "conversion-optimization"},
			{"cart", "conversion-optimization"},
			{"conversion", "conversion-optimization"},
			{"pricing", "conversion-optimization"},
			{"onboarding", "conversion-optimization"},
			{"hierarchy", "visual-hierarchy"},
			{"layout", "visual-hierarchy"},
			{"spacing", "visual-hierarchy"},
			{"whitespace", "visual-hierarchy"},
			{"navigation", "navigation"},
			{"menu", "navigation"},
			{"breadcrumb", "navigation"},
			{"typography", "typography"},
			{"font", "typography"},
			{"readab", "typography"},
			{"mobile", "mobile-ux"},
			{"touch", "mobile-ux"},
			{"gesture", "mobile-ux"},
			{"responsive", "mobile-ux"},
			{"competitor", "competitor-insights"},
			{"benchmark", "competitor-insights"},
		},
		industries: []industryRule{
			{"ecommerce", []string{"checkout", "cart", "shop", "store", "product page", "purchase", "buy"}},
			{"saas", []string{"dashboard", "subscription", "onboarding", "trial", "workspace", "b2b"}},
			{"finance", []string{"bank", "payment", "invoice", "fintech", "loan", "wallet"}},
			{"healthcare", []string{"patient", "clinic", "medical", "health", "appointment"}},
			{"education", []string{"course", "student", "lesson", "quiz", "learning"}},
		},
	}
}

// CategoryFor maps a search term to a knowledge category.
// Returns ("", false) when no keyword matches.
func (t *Taxonomy) CategoryFor(term string) (string, bool) {
	lowered := strings.ToLower(term)
	for _, rule := range t.categories {
		if strings.Contains(lowered, rule.Keyword) {
			return rule.Category, true
		}
	}
	return "", false
}

// InferIndustry infers an industry label from the raw user prompt.
// The first rule with a matching keyword wins; default is "general".
func (t *Taxonomy) InferIndustry(prompt string) string {
	lowered := strings.ToLower(prompt)
	for _, rule := range t.industries {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Industry
			}
		}
	}
	return "general"
}
