package services

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// Default rulebook bounds.
const (
	MinNarrativeLength = 100
	MaxNarrativeLength = 1000
	// ClarityMinLength is exclusive: a narrative must be longer than this.
	// Length is only a proxy for clarity; no linguistic analysis is done.
	ClarityMinLength = 50
)

// DefaultSpeculativePhrases is the hedging-language denylist.
var DefaultSpeculativePhrases = []string{
	"may have been",
	"might have been",
	"could have been",
	"it is believed",
	"suggests that",
	"appears to",
	"possibly",
	"likely",
}

var categoryGuidance = map[entities.Category]string{
	entities.CategoryWho:   "- Who: legal names, account numbers/IDs.",
	entities.CategoryWhat:  "- What: type of suspicious activity, amounts.",
	entities.CategoryWhen:  "- When: specific dates/times (ISO format preferred).",
	entities.CategoryWhere: "- Where: locations (branches, cities, countries).",
	entities.CategoryWhy:   "- Why: objective rationale (alerts/rules triggered, patterns).",
}

const (
	chronologyRemediation = "Reorder events by timestamp (earliest → latest) and ensure dates are parseable. " +
		"Include a brief timeline summary. If multiple same-day events, add times (HH:MM)."
	clarityRemediation = "Expand with concrete facts: who did what, when, where, why it's suspicious. " +
		"Use short sentences; reduce jargon; prefer specific amounts/dates over generalities."
	tooShortRemediation = "Add details (timeline, amounts, counterparties, alert triggers) to reach minimum."
	tooLongRemediation  = "Tighten the narrative: remove repetition and non-essential commentary to stay concise."
)

type phrasePattern struct {
	phrase string
	re     *regexp.Regexp
}

// RuleSet holds the tunable bounds of the compliance rulebook.
// The zero value is not usable; build one with NewRuleSet or DefaultRuleSet.
type RuleSet struct {
	MinLength        int
	MaxLength        int
	ClarityMinLength int
	phrases          []phrasePattern
}

var defaultRules = mustRuleSet(MinNarrativeLength, MaxNarrativeLength, ClarityMinLength, DefaultSpeculativePhrases)

// DefaultRuleSet returns the standard rulebook.
func DefaultRuleSet() *RuleSet {
	return defaultRules
}

// NewRuleSet builds a rulebook. Phrases are matched case-insensitively on word boundaries.
func NewRuleSet(minLen, maxLen, clarityMin int, phrases []string) (*RuleSet, error) {
	if minLen < 0 || maxLen < minLen {
		return nil, fmt.Errorf("invalid length bounds [%d, %d]", minLen, maxLen)
	}
	if clarityMin < 0 {
		return nil, fmt.Errorf("invalid clarity threshold %d", clarityMin)
	}

	patterns := make([]phrasePattern, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(p) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling phrase %q: %w", p, err)
		}
		patterns = append(patterns, phrasePattern{phrase: p, re: re})
	}

	return &RuleSet{
		MinLength:        minLen,
		MaxLength:        maxLen,
		ClarityMinLength: clarityMin,
		phrases:          patterns,
	}, nil
}

func mustRuleSet(minLen, maxLen, clarityMin int, phrases []string) *RuleSet {
	rs, err := NewRuleSet(minLen, maxLen, clarityMin, phrases)
	if err != nil {
		panic(err)
	}
	return rs
}

// RunChecklist evaluates a narrative against the default rulebook.
func RunChecklist(narrative string, facts entities.FiveWs) *entities.ComplianceReport {
	return defaultRules.Evaluate(narrative, facts)
}

// Evaluate runs all checks and returns the report. It never fails: every
// problem is expressed as a failed item. The narrative is trimmed first.
func (rs *RuleSet) Evaluate(narrative string, facts entities.FiveWs) *entities.ComplianceReport {
	narrative = strings.TrimSpace(narrative)
	length := utf8.RuneCountInString(narrative)

	items := []entities.ChecklistItem{
		checkFiveWs(facts),
		checkChronology(facts),
		rs.checkClarity(length),
		rs.checkSpeculation(narrative),
		rs.checkLength(length),
	}

	overall := true
	for _, item := range items {
		overall = overall && item.Passed
	}

	return &entities.ComplianceReport{
		Overall:      overall,
		Length:       length,
		FiveWsCounts: facts.Counts(),
		Items:        items,
	}
}

func checkFiveWs(facts entities.FiveWs) entities.ChecklistItem {
	item := entities.ChecklistItem{
		Key:    entities.CheckFiveWs,
		Label:  "All 5Ws captured (Who / What / When / Where / Why)",
		Passed: true,
	}

	missing := facts.Missing()
	if len(missing) == 0 {
		return item
	}

	names := make([]string, 0, len(missing))
	lines := make([]string, 0, len(missing))
	for _, c := range missing {
		names = append(names, string(c))
		lines = append(lines, categoryGuidance[c])
	}

	item.Passed = false
	item.Remediation = "Add missing elements — " + strings.Join(names, ", ") + ".\n" + strings.Join(lines, "\n")
	item.Details = &entities.ItemDetails{Missing: missing}
	return item
}

// checkChronology verifies the When facts are already in ascending order.
// It does not sort. Unparseable entries are skipped and reported in details;
// fewer than two parseable entries pass.
func checkChronology(facts entities.FiveWs) entities.ChecklistItem {
	item := entities.ChecklistItem{
		Key:    entities.CheckChronology,
		Label:  "Events presented in chronological order",
		Passed: true,
	}

	var parsed []time.Time
	var parseErrs []error
	for _, when := range facts[entities.CategoryWhen] {
		t, err := ParseTimestamp(when)
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		parsed = append(parsed, t)
	}

	for i := 1; i < len(parsed); i++ {
		if parsed[i].Before(parsed[i-1]) {
			item.Passed = false
			break
		}
	}

	if len(parsed) > 0 || len(parseErrs) > 0 {
		details := &entities.ItemDetails{}
		if len(parsed) > 0 {
			details.First = parsed[0].Format(entities.TimestampLayout)
			details.Last = parsed[len(parsed)-1].Format(entities.TimestampLayout)
		}
		if err := errors.Join(parseErrs...); err != nil {
			details.Error = strings.ReplaceAll(err.Error(), "\n", "; ")
		}
		item.Details = details
	}

	if !item.Passed {
		item.Remediation = chronologyRemediation
	}
	return item
}

func (rs *RuleSet) checkClarity(length int) entities.ChecklistItem {
	item := entities.ChecklistItem{
		Key:    entities.CheckClarity,
		Label:  "Narrative is clear and substantive",
		Passed: length > rs.ClarityMinLength,
	}
	if !item.Passed {
		item.Remediation = clarityRemediation
	}
	return item
}

func (rs *RuleSet) checkSpeculation(narrative string) entities.ChecklistItem {
	item := entities.ChecklistItem{
		Key:    entities.CheckNoSpeculation,
		Label:  "No speculative or conjectural language",
		Passed: true,
	}

	hits := rs.SpeculativeMatches(narrative)
	if len(hits) == 0 {
		return item
	}

	item.Passed = false
	item.Remediation = "Remove speculative phrases: " + strings.Join(hits, ", ") + ". " +
		"State only observable facts (what occurred), not intent or assumptions."
	item.Details = &entities.ItemDetails{Matches: hits}
	return item
}

// SpeculativeMatches returns the denylisted phrases found in narrative,
// sorted and deduplicated.
func (rs *RuleSet) SpeculativeMatches(narrative string) []string {
	lower := strings.ToLower(narrative)
	found := make(map[string]struct{})
	for _, p := range rs.phrases {
		if p.re.MatchString(lower) {
			found[p.phrase] = struct{}{}
		}
	}
	hits := make([]string, 0, len(found))
	for p := range found {
		hits = append(hits, p)
	}
	sort.Strings(hits)
	return hits
}

func (rs *RuleSet) checkLength(length int) entities.ChecklistItem {
	item := entities.ChecklistItem{
		Key:    entities.CheckLengthBounds,
		Label:  fmt.Sprintf("Narrative length within %d–%d characters", rs.MinLength, rs.MaxLength),
		Passed: length >= rs.MinLength && length <= rs.MaxLength,
	}
	if item.Passed {
		return item
	}

	advice := tooLongRemediation
	if length < rs.MinLength {
		advice = tooShortRemediation
	}
	item.Remediation = fmt.Sprintf("Current length %d chars. %s", length, advice)
	return item
}
