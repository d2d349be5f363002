package rag

import (
	"slices"
	"testing"
)

func TestExtractTermsEmptyPrompt(t *testing.T) {
	terms := ExtractTerms("", nil)

	if len(terms) != len(coreTerms) {
		t.Fatalf("terms = %v, want just the %d core terms", terms, len(coreTerms))
	}
	for i, core := range coreTerms {
		if terms[i] != core {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], core)
		}
	}
}

func TestExtractTermsCoreTermsFirst(t *testing.T) {
	terms := ExtractTerms("checkout button accessibility", nil)

	for i, core := range coreTerms {
		if terms[i] != core {
			t.Fatalf("terms[%d] = %q, want core term %q first", i, terms[i], core)
		}
	}
}

func TestExtractTermsExpansions(t *testing.T) {
	terms := ExtractTerms("the checkout button is hard to see", nil)

	for _, want := range []string{"checkout flow", "cart abandonment", "button design", "interactive elements"} {
		if !slices.Contains(terms, want) {
			t.Errorf("terms missing expansion %q: %v", want, terms)
		}
	}
}

func TestExtractTermsIncludesRawPrompt(t *testing.T) {
	terms := ExtractTerms("  Improve My Checkout  ", nil)

	if !slices.Contains(terms, "improve my checkout") {
		t.Errorf("terms missing lowercased trimmed prompt: %v", terms)
	}
}

func TestExtractTermsDeduplicates(t *testing.T) {
	// "accessibility" is both a core term and an expansion of "contrast".
	terms := ExtractTerms("contrast problems", nil)

	count := 0
	for _, term := range terms {
		if term == "accessibility" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("accessibility appears %d times, want 1", count)
	}
}

func TestExtractTermsPhrases(t *testing.T) {
	terms := ExtractTerms("improve checkout conversion rates quickly", nil)

	if !slices.Contains(terms, "improve checkout") {
		t.Errorf("terms missing bigram phrase: %v", terms)
	}
}

func TestExtractTermsPhraseCap(t *testing.T) {
	terms := ExtractTerms("alpha bravo charlie delta echo foxtrot golf hotel india juliet", nil)

	phraseCount := 0
	for _, term := range terms {
		if term != "alpha bravo charlie delta echo foxtrot golf hotel india juliet" &&
			!slices.Contains(coreTerms, term) {
			phraseCount++
		}
	}
	if phraseCount > maxPhrases {
		t.Errorf("phrase count = %d, want at most %d: %v", phraseCount, maxPhrases, terms)
	}
}

func TestExtractTermsAnnotations(t *testing.T) {
	annotations := []Annotation{
		{Label: "CTA", Comment: "this button is too small", X: 10, Y: 20},
	}
	terms := ExtractTerms("", annotations)

	for _, want := range []string{"button design", "design feedback"} {
		if !slices.Contains(terms, want) {
			t.Errorf("terms missing annotation-derived %q: %v", want, terms)
		}
	}
}

func TestTaxonomyCategoryFor(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	tests := []struct {
		term   string
		want   string
		wantOK bool
	}{
		{"button", "interactive-elements", true},
		{"button design", "interactive-elements", true},
		{"form validation", "forms", true},
		{"color contrast", "accessibility", true},
		{"checkout flow", "conversion-optimization", true},
		{"competitor analysis", "competitor-insights", true},
		{"quantum physics", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := taxonomy.CategoryFor(tt.term)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CategoryFor(%q) = (%q, %v), want (%q, %v)", tt.term, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTaxonomyInferIndustry(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	tests := []struct {
		prompt string
		want   string
	}{
		{"checkout button accessibility", "ecommerce"},
		{"our SaaS dashboard onboarding", "saas"},
		{"patient appointment scheduling screen", "healthcare"},
		{"a nice landing page", "general"},
		{"", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := taxonomy.InferIndustry(tt.prompt); got != tt.want {
				t.Errorf("InferIndustry(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}
