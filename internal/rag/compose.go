package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/figmant/figmant/internal/knowledge"
)

// excerptLimit caps how much of each entry's content is quoted in the
// composed prompt.
const excerptLimit = 250

const roleFraming = `You are a senior UX researcher reviewing UI design screenshots. Ground every piece of feedback in established UX research and the reference knowledge provided below. Be specific and actionable; never offer generic praise.`

const outputSchema = `Your response MUST be a single valid JSON object with exactly this shape:

{
  "feedback": [
    {
      "title": string,
      "description": string (at least 120 characters, concrete and actionable),
      "severity": "high" | "medium" | "low",
      "coordinates": { "x": number, "y": number },
      "sources": [string]
    }
  ],
  "summary": string
}

Example of GOOD feedback:
{"title": "Primary CTA fails contrast check", "description": "The 'Continue' button renders #9CA3AF text on a #F3F4F6 background, a 1.8:1 ratio that fails the WCAG 2.1 AA minimum of 4.5:1. Darken the label to at least #4B5563 or use the brand primary fill so the main action is legible in bright conditions.", "severity": "high", "coordinates": {"x": 412, "y": 688}, "sources": ["WCAG 2.1, Success Criterion 1.4.3"]}

Example of BAD feedback (never produce this):
{"title": "Button issue", "description": "The button could be better.", "severity": "medium", "coordinates": {"x": 0, "y": 0}, "sources": []}`

const integrationInstructions = `When a reference entry below supports a finding, cite its source string in that finding's "sources" array. Prefer findings backed by the references; clearly separate evidence-backed findings from your own judgment.`

const hardConstraints = `Hard constraints, restated:
- Output JSON only. No markdown fences, no prose outside the JSON object.
- No placeholder or filler feedback text.
- Every "description" is at least 120 characters and names the concrete fix.
- Every feedback item includes "coordinates" locating the issue.
- Cite reference sources where they back a finding.`

// Compose renders the user prompt and retrieved knowledge into a single
// LLM-ready instruction string.
//
// Sections appear in fixed order: role framing, the strict output schema
// with a worked good/bad example, the verbatim user prompt (when non-empty
// after trimming), knowledge entries grouped by category with excerpts and
// relevance percentages, citation instructions, and the reiterated hard
// constraints. Output is byte-identical for identical input.
func Compose(userPrompt string, entries []knowledge.Result) string {
	var b strings.Builder

	b.WriteString(roleFraming)
	b.WriteString("\n\n")
	b.WriteString(outputSchema)

	if trimmed := strings.TrimSpace(userPrompt); trimmed != "" {
		b.WriteString("\n\n## User Request\n\n")
		b.WriteString(trimmed)
	}

	if len(entries) > 0 {
		b.WriteString("\n\n## Reference Knowledge\n")
		writeGroupedEntries(&b, entries)
		b.WriteString("\n")
		b.WriteString(integrationInstructions)
	}

	b.WriteString("\n\n")
	b.WriteString(hardConstraints)

	return b.String()
}

// writeGroupedEntries renders entries grouped by category. Categories appear
// in order of their first occurrence in the ranked input, and entries keep
// rank order within each group, so grouping never perturbs determinism.
func writeGroupedEntries(b *strings.Builder, entries []knowledge.Result) {
	var categories []string
	grouped := make(map[string][]knowledge.Result)
	for _, e := range entries {
		if _, seen := grouped[e.Entry.Category]; !seen {
			categories = append(categories, e.Entry.Category)
		}
		grouped[e.Entry.Category] = append(grouped[e.Entry.Category], e)
	}

	for _, category := range categories {
		fmt.Fprintf(b, "\n### %s\n\n", category)
		for _, e := range grouped[category] {
			fmt.Fprintf(b, "- **%s** (%s, %.1f%% relevance): %s\n",
				e.Entry.Title, e.Entry.Source, e.Similarity*100, excerpt(e.Entry.Content))
		}
	}
}

// excerpt truncates content to excerptLimit characters, appending an
// ellipsis when truncated.
func excerpt(content string) string {
	if len(content) <= excerptLimit {
		return content
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
