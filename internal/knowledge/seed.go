package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Seeder indexes the built-in UX knowledge corpus.
// It provides the baseline entries the retrieval pipeline draws from before
// any customer-specific knowledge is loaded.
//
// Thread-safe: IndexAll/ClearAll are protected by mu.
type Seeder struct {
	store  *Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSeeder creates a seeder for the given store.
func NewSeeder(store *Store, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Seeder{
		store:  store,
		logger: logger,
	}
}

// IndexAll indexes all built-in knowledge entries.
// Uses fixed entry IDs with upsert behavior, so re-running is safe.
// Individual failures are logged and skipped; an error is returned only if
// every entry failed, to prevent silent total failure.
//
// Returns the number of successfully indexed entries.
func (s *Seeder) IndexAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := buildSeedEntries()

	successCount := 0
	for _, entry := range entries {
		if err := s.store.Add(ctx, entry); err != nil {
			s.logger.Error("failed to index seed entry",
				"id", entry.ID,
				"error", err)
			continue
		}
		successCount++
	}

	s.logger.Info("seed knowledge indexed",
		"total", len(entries),
		"success", successCount,
		"failed", len(entries)-successCount)

	if successCount == 0 {
		return 0, fmt.Errorf("failed to index any seed entries")
	}

	return successCount, nil
}

// ClearAll removes all built-in entries. Useful for tests and reseeding.
func (s *Seeder) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deletedCount := 0
	for _, entry := range buildSeedEntries() {
		if err := s.store.Delete(ctx, entry.ID); err != nil {
			s.logger.Warn("failed to delete seed entry",
				"id", entry.ID,
				"error", err)
			continue
		}
		deletedCount++
	}

	s.logger.Info("seed knowledge cleared", "deleted", deletedCount)
	return nil
}

// buildSeedEntries constructs the built-in UX knowledge corpus.
func buildSeedEntries() []Entry {
	return []Entry{
		{
			ID:    "seed:contrast-ratios",
			Title: "Button Contrast Guidelines",
			Content: `Text and interactive elements must meet WCAG 2.1 contrast minimums: 4.5:1 for normal text, 3:1 for large text (18pt+) and UI components. Primary action buttons benefit from ratios above 7:1 - high-contrast CTAs see measurably higher tap accuracy on mobile. Never rely on color alone to signal state; pair color changes with icons, labels, or weight changes. Disabled states are exempt from contrast minimums but should remain legible enough to communicate their presence.`,
			Source:   "WCAG 2.1, Success Criterion 1.4.3",
			Category: "accessibility",
			Tags:     []string{"contrast", "button", "wcag", "color"},
		},
		{
			ID:    "seed:focus-indicators",
			Title: "Keyboard Focus Visibility",
			Content: `Every interactive element needs a visible focus indicator with at least 3:1 contrast against adjacent colors. Removing outline styles without a replacement breaks keyboard navigation for motor-impaired and power users. Focus order must follow reading order; modals must trap focus while open and restore it on close. Skip links let keyboard users bypass repeated navigation blocks.`,
			Source:   "WCAG 2.2, Success Criterion 2.4.7",
			Category: "accessibility",
			Tags:     []string{"focus", "keyboard", "navigation", "wcag"},
		},
		{
			ID:    "seed:checkout-flow",
			Title: "Checkout Flow Optimization",
			Content: `Average documented cart abandonment sits near 70%, with forced account creation the single largest avoidable cause. Guest checkout, a persistent order summary, and explicit shipping costs before the final step each reduce abandonment. Keep the checkout to one intent per screen, show a progress indicator for flows over two steps, and defer optional fields (company, second address line) behind disclosure toggles. Trust signals near the payment form - badges, return policy links - measurably lift completion for first-time buyers.`,
			Source:   "Baymard Institute checkout research",
			Category: "conversion-optimization",
			Tags:     []string{"checkout", "cart", "ecommerce", "forms", "conversion"},
		},
		{
			ID:    "seed:cta-placement",
			Title: "Call-to-Action Hierarchy",
			Content: `One primary action per view. Competing CTAs of equal visual weight split attention and depress click-through on both. The primary button should be the highest-contrast element in its region, sized at minimum 44x44pt for touch, with secondary actions rendered as ghost buttons or links. Above-the-fold placement matters less than placement at the moment of decision - end of pricing tables, after social proof, at natural content breaks.`,
			Source:   "Nielsen Norman Group",
			Category: "conversion-optimization",
			Tags:     []string{"cta", "button", "conversion", "hierarchy"},
		},
		{
			ID:    "seed:visual-hierarchy",
			Title: "Visual Hierarchy Fundamentals",
			Content: `Users scan in F and Z patterns; hierarchy should place the most important element where scanning begins. Size, weight, color, and whitespace are the primary hierarchy tools - in that order of strength. A page needs exactly one H1-weight element; three or more competing focal points reads as none. Group related controls within 8pt of each other and separate unrelated groups by at least 24pt (proximity beats borders for grouping).`,
			Source:   "Nielsen Norman Group eye-tracking studies",
			Category: "visual-hierarchy",
			Tags:     []string{"hierarchy", "layout", "scanning", "whitespace"},
		},
		{
			ID:    "seed:touch-targets",
			Title: "Touch Target Sizing",
			Content: `Minimum touch target is 44x44pt (Apple HIG) or 48x48dp (Material); smaller targets produce mis-taps that users attribute to the app, not themselves. Adjacent targets need at least 8pt of separation. Thumb-zone research places the comfortable reach area in the bottom two-thirds of the screen; primary mobile actions belong there, destructive ones outside it.`,
			Source:   "Apple HIG / Material Design guidelines",
			Category: "interactive-elements",
			Tags:     []string{"touch", "mobile", "button", "target-size"},
		},
		{
			ID:    "seed:form-design",
			Title: "Form Field Best Practices",
			Content: `Single-column forms complete faster than multi-column in every published study. Labels above fields outperform placeholder-only labeling, which fails recall and accessibility. Inline validation should fire on blur, not on keystroke, and error messages must say how to fix the problem, not just that one exists. Each removed field raises completion: ask only for what the current step needs.`,
			Source:   "Baymard Institute form usability research",
			Category: "forms",
			Tags:     []string{"forms", "validation", "labels", "input"},
		},
		{
			ID:    "seed:navigation-patterns",
			Title: "Navigation Depth and Labels",
			Content: `Keep primary navigation to seven or fewer items; beyond that, discoverability drops sharply. Navigation labels should use the user's vocabulary, not internal product names - label testing via card sorting catches most mismatches. Breadcrumbs help on hierarchies three levels or deeper. Hamburger-only navigation on desktop reduces engagement with secondary sections by roughly half versus visible navigation.`,
			Source:   "Nielsen Norman Group IA research",
			Category: "navigation",
			Tags:     []string{"navigation", "menu", "information-architecture", "labels"},
		},
		{
			ID:    "seed:typography-readability",
			Title: "Typography for Readability",
			Content: `Body text below 16px measurably slows reading on screens. Line length between 45 and 75 characters keeps the return sweep comfortable; line height of 1.4-1.6 suits body copy. Limit a screen to two typefaces and establish scale through a modular ratio rather than ad hoc sizes. All-caps is acceptable only for short labels - it slows reading of running text by obscuring word shapes.`,
			Source:   "Butterick's Practical Typography",
			Category: "typography",
			Tags:     []string{"typography", "readability", "font-size", "line-height"},
		},
		{
			ID:    "seed:competitor-onboarding",
			Title: "Onboarding Patterns in Leading SaaS Products",
			Content: `Market leaders converged on checklist-driven onboarding: a persistent, dismissible progress widget listing 3-5 activation tasks, each deep-linking into the product. Empty states double as teaching moments with a single primary action. Product tours shrank from multi-step modals to one-beat tooltips triggered by first hover. Time-to-first-value under five minutes correlates with week-one retention across published teardowns.`,
			Source:   "Product teardown analysis, 2024 cohort",
			Category: CategoryCompetitorInsights,
			Tags:     []string{"onboarding", "saas", "activation", "competitor"},
		},
		{
			ID:    "seed:competitor-pricing-pages",
			Title: "Pricing Page Conventions Among Competitors",
			Content: `Dominant pattern: three tiers with the middle tier pre-highlighted as "most popular", annual/monthly toggle defaulting to annual, and feature comparison collapsed below the fold. Leaders expose a free tier or trial without card entry. Enterprise tiers hide pricing behind contact forms; all others show numbers - hidden pricing on self-serve tiers correlates with higher bounce in every published test.`,
			Source:   "Competitive pricing page survey, 2024",
			Category: CategoryCompetitorInsights,
			Tags:     []string{"pricing", "tiers", "competitor", "conversion"},
		},
		{
			ID:    "seed:mobile-gestures",
			Title: "Mobile Gesture Affordances",
			Content: `Undiscoverable gestures need visible alternatives: swipe-to-delete must pair with an edit mode or overflow menu. Pull-to-refresh is expected on feeds and broken expectations there read as bugs. Horizontal carousels need partial-item peeking to signal scrollability - fully aligned items hide the remaining content from most users.`,
			Source:   "Material Design / iOS pattern libraries",
			Category: "mobile-ux",
			Tags:     []string{"mobile", "gestures", "swipe", "affordance"},
		},
	}
}
